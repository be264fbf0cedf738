package domain

import "time"

type Order struct {
	ID         string
	Customer   Customer
	Items      []OrderItem
	TotalCents int64
	CreatedAt  time.Time
}

// OrderItem freezes the unit price at order time. PriceCents is a copy of
// the product's catalog price, not a reference to it.
type OrderItem struct {
	ID         string
	ProductID  string
	Quantity   int
	PriceCents int64
}

func NewOrder(id string, customer Customer, items []OrderItem) Order {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.PriceCents
	}
	return Order{
		ID:         id,
		Customer:   customer,
		Items:      items,
		TotalCents: total,
		CreatedAt:  time.Now().UTC(),
	}
}
