package domain

type OrderCreated struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	TotalCents int64       `json:"total_cents"`
	Items      []OrderItem `json:"items"`
}
