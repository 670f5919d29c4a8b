package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-bookstore/internal/orders"
	"github.com/ariefcatur/go-bookstore/internal/redisx"
)

// RedisProjection keeps the best-seller sorted set and drops the cached statistics.
type RedisProjection struct{ Redis *redis.Client }

func (p *RedisProjection) MarkSeen(ctx context.Context, service, eventID string) (bool, error) {
	return p.Redis.SetNX(ctx, fmt.Sprintf(redisx.KeyDedup, service, eventID), "1", redisx.TTLDedup).Result()
}

func (p *RedisProjection) Forget(ctx context.Context, service, eventID string) error {
	return p.Redis.Del(ctx, fmt.Sprintf(redisx.KeyDedup, service, eventID)).Err()
}

func (p *RedisProjection) Apply(ctx context.Context, ev orders.OrderPlacedPayload) error {
	_, err := p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, l := range ev.Items {
			pipe.ZIncrBy(ctx, redisx.KeyBestsellers, float64(l.Quantity), strconv.FormatInt(l.BookID, 10))
		}
		pipe.Del(ctx, redisx.KeyStats)
		return nil
	})
	return err
}
