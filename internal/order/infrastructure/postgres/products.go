package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecommkit/orderflow/internal/order/domain"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price_cents, quantity, created_at, updated_at FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateQuantity writes absolute stock levels in one transaction and
// returns the updated rows in update order.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, updates []domain.QuantityUpdate) ([]domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE products SET quantity=$2, updated_at=now() WHERE id=$1
			RETURNING id, name, price_cents, quantity, created_at, updated_at`,
			u.ProductID, u.Quantity)
	}
	results := tx.SendBatch(ctx, batch)

	updated := make([]domain.Product, 0, len(updates))
	for range updates {
		var p domain.Product
		if err := results.QueryRow().Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			_ = results.Close()
			return nil, err
		}
		updated = append(updated, p)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}
