package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecommkit/orderflow/internal/order/domain"
	"github.com/ecommkit/orderflow/pkg/tracing"
)

type OrderRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOrderRepository(log *slog.Logger, pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{log: log, pool: pool}
}

// CreateWithOutbox inserts the order, its items, and the event payload as
// one transaction. Item ids are generated here; the returned order carries
// them.
func (r *OrderRepository) CreateWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, customer_id, total_cents, created_at) VALUES ($1,$2,$3,$4)`,
		o.ID, o.Customer.ID, o.TotalCents, o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	batch := &pgx.Batch{}
	for i := range o.Items {
		o.Items[i].ID = uuid.NewString()
		batch.Queue(`INSERT INTO order_items (id, order_id, product_id, quantity, price_cents) VALUES ($1,$2,$3,$4,$5)`,
			o.Items[i].ID, o.ID, o.Items[i].ProductID, o.Items[i].Quantity, o.Items[i].PriceCents)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Order{}, err
	}

	headers := map[string]string{"source": "order-service"}
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		 VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, eventType, payload, headers, tracing.Traceparent(ctx))
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		`SELECT o.id, o.total_cents, o.created_at, c.id, c.name, c.email, c.created_at
		 FROM orders o JOIN customers c ON c.id = o.customer_id
		 WHERE o.id=$1`, id).
		Scan(&o.ID, &o.TotalCents, &o.CreatedAt,
			&o.Customer.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, quantity, price_cents FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}
