package application

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ecommkit/orderflow/internal/order/domain"
)

// ItemRequest is one requested order line: a product id and how many
// units the caller wants.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

type Service struct {
	log       *slog.Logger
	customers CustomerReader
	products  ProductRepository
	orders    OrderRepository
}

func NewService(log *slog.Logger, customers CustomerReader, products ProductRepository, orders OrderRepository) *Service {
	return &Service{
		log:       log,
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// CreateOrder validates the customer, the products, and the stock levels,
// snapshots current catalog prices into order lines, persists the order,
// and decrements inventory. Every validation failure aborts before any
// write.
//
// The order insert and its OrderCreated outbox row commit in one
// transaction; the stock decrement is a separate write. If the decrement
// fails the order stays persisted with no compensating rollback.
func (s *Service) CreateOrder(ctx context.Context, customerID string, items []ItemRequest) (domain.Order, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Order{}, err
	}
	if customer == nil {
		return domain.Order{}, domain.ErrCustomerNotFound
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return domain.Order{}, err
	}
	if len(found) == 0 {
		return domain.Order{}, domain.ErrNoProductsFound
	}

	// First row wins if the catalog ever returns duplicate ids.
	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return domain.Order{}, domain.ProductNotFound(item.ProductID)
		}
	}

	for _, item := range items {
		if item.Quantity > byID[item.ProductID].Quantity {
			return domain.Order{}, domain.InsufficientStock(item.ProductID, item.Quantity)
		}
	}

	lines := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: byID[item.ProductID].PriceCents,
		})
	}

	o := domain.NewOrder(uuid.NewString(), *customer, lines)

	event := domain.OrderCreated{
		OrderID:    o.ID,
		CustomerID: customer.ID,
		TotalCents: o.TotalCents,
		Items:      lines,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Order{}, err
	}

	created, err := s.orders.CreateWithOutbox(ctx, o, "OrderCreated", payload)
	if err != nil {
		return domain.Order{}, err
	}

	// The persisted order's items are authoritative for the decrement.
	updates := make([]domain.QuantityUpdate, 0, len(created.Items))
	for _, line := range created.Items {
		updates = append(updates, domain.QuantityUpdate{
			ProductID: line.ProductID,
			Quantity:  byID[line.ProductID].Quantity - line.Quantity,
		})
	}
	if _, err := s.products.UpdateQuantity(ctx, updates); err != nil {
		s.log.Error("stock decrement failed after order persisted", "order_id", created.ID, "err", err)
		return domain.Order{}, err
	}

	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}
