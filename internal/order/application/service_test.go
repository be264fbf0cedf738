package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommkit/orderflow/internal/order/domain"
)

type fakeCustomers struct {
	customers map[string]domain.Customer
	err       error
}

func (f *fakeCustomers) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type fakeProducts struct {
	products  []domain.Product
	updates   [][]domain.QuantityUpdate
	updateErr error
}

func (f *fakeProducts) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var found []domain.Product
	for _, p := range f.products {
		if want[p.ID] {
			found = append(found, p)
		}
	}
	return found, nil
}

func (f *fakeProducts) UpdateQuantity(_ context.Context, updates []domain.QuantityUpdate) ([]domain.Product, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, updates)
	var updated []domain.Product
	for _, u := range updates {
		for i := range f.products {
			if f.products[i].ID == u.ProductID {
				f.products[i].Quantity = u.Quantity
				updated = append(updated, f.products[i])
				break
			}
		}
	}
	return updated, nil
}

func (f *fakeProducts) quantity(id string) int {
	for _, p := range f.products {
		if p.ID == id {
			return p.Quantity
		}
	}
	return -1
}

type fakeOrders struct {
	created   []domain.Order
	payloads  [][]byte
	createErr error
}

func (f *fakeOrders) CreateWithOutbox(_ context.Context, o domain.Order, _ string, payload []byte) (domain.Order, error) {
	if f.createErr != nil {
		return domain.Order{}, f.createErr
	}
	for i := range o.Items {
		o.Items[i].ID = fmt.Sprintf("item-%d", i+1)
	}
	f.created = append(f.created, o)
	f.payloads = append(f.payloads, payload)
	return o, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (domain.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func newFixture() (*Service, *fakeCustomers, *fakeProducts, *fakeOrders) {
	customers := &fakeCustomers{customers: map[string]domain.Customer{
		"C1": {ID: "C1", Name: "Ada", Email: "ada@example.com"},
	}}
	products := &fakeProducts{products: []domain.Product{
		{ID: "P1", Name: "Widget", PriceCents: 10, Quantity: 5},
		{ID: "P2", Name: "Gadget", PriceCents: 250, Quantity: 8},
	}}
	orders := &fakeOrders{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), customers, products, orders)
	return svc, customers, products, orders
}

func TestCreateOrder(t *testing.T) {
	svc, _, products, orders := newFixture()

	order, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 3}})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "P1", order.Items[0].ProductID)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, int64(10), order.Items[0].PriceCents)
	assert.NotEmpty(t, order.ID)
	assert.NotEmpty(t, order.Items[0].ID)
	assert.Equal(t, "C1", order.Customer.ID)
	assert.Equal(t, int64(30), order.TotalCents)

	require.Len(t, orders.created, 1)
	require.Len(t, orders.payloads, 1)
	assert.Contains(t, string(orders.payloads[0]), order.ID)

	assert.Equal(t, 2, products.quantity("P1"))
	assert.Equal(t, 8, products.quantity("P2"))
}

func TestCreateOrderMultipleLines(t *testing.T) {
	svc, _, products, _ := newFixture()

	order, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{
		{ProductID: "P2", Quantity: 2},
		{ProductID: "P1", Quantity: 5},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "P2", order.Items[0].ProductID)
	assert.Equal(t, int64(250), order.Items[0].PriceCents)
	assert.Equal(t, "P1", order.Items[1].ProductID)
	assert.Equal(t, int64(10), order.Items[1].PriceCents)
	assert.Equal(t, int64(550), order.TotalCents)

	// Total inventory deducted equals total ordered.
	assert.Equal(t, 0, products.quantity("P1"))
	assert.Equal(t, 6, products.quantity("P2"))
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	svc, _, products, orders := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 1}})
	require.NoError(t, err)

	// A later catalog price change must not touch the persisted line.
	products.products[0].PriceCents = 999
	assert.Equal(t, int64(10), orders.created[0].Items[0].PriceCents)
}

func TestCreateOrderCustomerNotFound(t *testing.T) {
	svc, _, products, orders := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C9", []ItemRequest{{ProductID: "P1", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	assert.Empty(t, orders.created)
	assert.Empty(t, products.updates)
}

func TestCreateOrderNoProductsFound(t *testing.T) {
	svc, _, _, orders := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P8", Quantity: 1}, {ProductID: "P9", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNoProductsFound)
	assert.Empty(t, orders.created)
}

func TestCreateOrderProductNotFound(t *testing.T) {
	svc, _, _, orders := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "P9", Quantity: 1},
		{ProductID: "P8", Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	// First missing id in input order, not P8.
	assert.Contains(t, err.Error(), "P9")
	assert.NotContains(t, err.Error(), "P8")
	assert.Empty(t, orders.created)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, _, products, orders := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 10}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// The message names the requested quantity and the product id.
	assert.Contains(t, err.Error(), "10")
	assert.Contains(t, err.Error(), "P1")

	assert.Empty(t, orders.created)
	assert.Equal(t, 5, products.quantity("P1"))
}

func TestCreateOrderInsufficientStockFirstOffender(t *testing.T) {
	svc, _, _, _ := newFixture()

	// P2 exceeds stock too, but P1 comes first in input order.
	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{
		{ProductID: "P1", Quantity: 6},
		{ProductID: "P2", Quantity: 100},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "P1")
	assert.Contains(t, err.Error(), "6")
	assert.NotContains(t, err.Error(), "P2")
}

func TestCreateOrderExactStockAllowed(t *testing.T) {
	svc, _, products, _ := newFixture()

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, 0, products.quantity("P1"))
}

func TestCreateOrderPersistFailure(t *testing.T) {
	svc, _, products, orders := newFixture()
	orders.createErr = errors.New("pg down")

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 1}})
	require.Error(t, err)

	// No decrement without a persisted order.
	assert.Empty(t, products.updates)
	assert.Equal(t, 5, products.quantity("P1"))
}

func TestCreateOrderDecrementFailureLeavesOrderPersisted(t *testing.T) {
	svc, _, products, orders := newFixture()
	products.updateErr = errors.New("pg down")

	_, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 1}})
	require.Error(t, err)

	// No compensation: the order stays persisted even though stock was
	// never decremented.
	assert.Len(t, orders.created, 1)
	assert.Equal(t, 5, products.quantity("P1"))
}

func TestGetOrder(t *testing.T) {
	svc, _, _, _ := newFixture()

	created, err := svc.CreateOrder(context.Background(), "C1", []ItemRequest{{ProductID: "P1", Quantity: 2}})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
