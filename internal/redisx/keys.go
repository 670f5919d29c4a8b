package redisx

import "time"

const (
	// Checkout idempotency: idem:checkout:{user_id}:{idempotency_key} -> order_id
	KeyIdemCheckout = "idem:checkout:%d:%s"

	// Cached transaction statistics (JSON), invalidated by the stats consumer.
	KeyStats = "stats:transactions"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Best-seller leaderboard: sorted set of book_id scored by units sold.
	KeyBestsellers = "books:sold"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatsCache  = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
