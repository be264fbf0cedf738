package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCustomerNotFound  = errors.New("could not find any customer with the given id")
	ErrNoProductsFound   = errors.New("could not find any products with the given ids")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
)

func ProductNotFound(id string) error {
	return fmt.Errorf("could not find product %s: %w", id, ErrProductNotFound)
}

// InsufficientStock reports the requested quantity, never the available
// stock. Callers depend on the requested value appearing in the message.
func InsufficientStock(id string, requested int) error {
	return fmt.Errorf("the quantity %d is not available for product %s: %w", requested, id, ErrInsufficientStock)
}
