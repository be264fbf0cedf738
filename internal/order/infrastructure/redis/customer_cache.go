package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecommkit/orderflow/internal/order/application"
	"github.com/ecommkit/orderflow/internal/order/domain"
)

// CustomerCache is a read-through cache over a CustomerReader. Customers
// are never mutated by order creation, so staleness is bounded by the TTL.
// Cache failures degrade to the wrapped reader, never to an error.
type CustomerCache struct {
	log   *slog.Logger
	rdb   *redis.Client
	inner application.CustomerReader
	ttl   time.Duration
}

func NewCustomerCache(log *slog.Logger, rdb *redis.Client, inner application.CustomerReader, ttl time.Duration) *CustomerCache {
	return &CustomerCache{log: log, rdb: rdb, inner: inner, ttl: ttl}
}

func (c *CustomerCache) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	key := "customer:" + id

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var customer domain.Customer
		if err := json.Unmarshal(raw, &customer); err == nil {
			return &customer, nil
		}
		c.log.Warn("customer cache entry corrupt, evicting", "key", key)
		_ = c.rdb.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("customer cache read failed", "key", key, "err", err)
	}

	customer, err := c.inner.FindByID(ctx, id)
	if err != nil || customer == nil {
		return customer, err
	}

	if raw, err := json.Marshal(customer); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("customer cache write failed", "key", key, "err", err)
		}
	}
	return customer, nil
}
