package application

import (
	"context"

	"github.com/ecommkit/orderflow/internal/order/domain"
)

// CustomerReader resolves customers by id. FindByID returns (nil, nil)
// when no customer matches.
type CustomerReader interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
}

// ProductRepository reads catalog products and writes stock levels.
// UpdateQuantity applies absolute quantities and returns the updated rows.
type ProductRepository interface {
	FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error)
	UpdateQuantity(ctx context.Context, updates []domain.QuantityUpdate) ([]domain.Product, error)
}

// OrderRepository persists orders. CreateWithOutbox writes the order, its
// items, and the given event payload in a single transaction, and returns
// the persisted order including generated item ids.
type OrderRepository interface {
	CreateWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
}
