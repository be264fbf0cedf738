package domain

import "time"

// Customer is looked up during order creation and never mutated here.
// Customers are created and deleted by a separate service.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
