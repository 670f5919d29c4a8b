package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-bookstore/internal/redisx"
)

type IdempotencyCache interface {
	Lookup(ctx context.Context, userID int64, key string) (orderID int64, ok bool, err error)
	Remember(ctx context.Context, userID int64, key string, orderID int64) error
}

// RedisIdempotency is a fast path in front of orders.idempotency_key, which stays the source of truth.
type RedisIdempotency struct{ Redis *redis.Client }

func (c *RedisIdempotency) Lookup(ctx context.Context, userID int64, key string) (int64, bool, error) {
	id, err := c.Redis.Get(ctx, fmt.Sprintf(redisx.KeyIdemCheckout, userID, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (c *RedisIdempotency) Remember(ctx context.Context, userID int64, key string, orderID int64) error {
	return c.Redis.Set(ctx, fmt.Sprintf(redisx.KeyIdemCheckout, userID, key), orderID, redisx.TTLIdempotency).Err()
}
