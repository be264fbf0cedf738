package domain

import "time"

type Product struct {
	ID         string
	Name       string
	PriceCents int64
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// QuantityUpdate carries the new absolute stock level for a product,
// not a delta.
type QuantityUpdate struct {
	ProductID string
	Quantity  int
}
