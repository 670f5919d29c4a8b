package orders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-bookstore/internal/redisx"
)

type Statistics struct {
	TotalTransactions       int64           `json:"total_transactions"`
	AverageTransactionValue decimal.Decimal `json:"average_transaction_value"`
	MostPopularGenre        *string         `json:"most_popular_genre"`
	LeastPopularGenre       *string         `json:"least_popular_genre"`
}

type GenreCount struct {
	Name  string
	Count int64
}

// Stats aggregates over all orders. Results are cached in Redis when a client is set.
type Stats struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func (s *Stats) Statistics(ctx context.Context) (Statistics, error) {
	var st Statistics
	if s.Redis != nil {
		found, err := redisx.GetJSON(ctx, s.Redis, redisx.KeyStats, &st)
		if err != nil {
			log.WithError(err).Warn("stats cache read failed")
		}
		if found {
			return st, nil
		}
	}

	var (
		count   int64
		revenue decimal.Decimal
	)
	err := s.DB.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM orders),
		       (SELECT COALESCE(SUM(quantity * unit_price), 0) FROM order_items)`,
	).Scan(&count, &revenue)
	if err != nil {
		return Statistics{}, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT g.name, COUNT(oi.id) AS transaction_count
		FROM genres g
		JOIN books b ON g.id = b.genre_id
		JOIN order_items oi ON b.id = oi.book_id
		WHERE g.deleted_at IS NULL AND b.deleted_at IS NULL
		GROUP BY g.id, g.name
		ORDER BY transaction_count DESC, g.name ASC`)
	if err != nil {
		return Statistics{}, err
	}
	defer rows.Close()
	var genres []GenreCount
	for rows.Next() {
		var g GenreCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return Statistics{}, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return Statistics{}, err
	}

	st = Summarize(count, revenue, genres)
	if s.Redis != nil {
		if err := redisx.SetJSON(ctx, s.Redis, redisx.KeyStats, st, redisx.TTLStatsCache); err != nil {
			log.WithError(err).Warn("stats cache write failed")
		}
	}
	return st, nil
}

// Summarize expects genres ordered by count descending.
func Summarize(count int64, revenue decimal.Decimal, genres []GenreCount) Statistics {
	st := Statistics{TotalTransactions: count, AverageTransactionValue: decimal.Zero}
	if count > 0 {
		st.AverageTransactionValue = revenue.Div(decimal.NewFromInt(count)).Round(2)
	}
	if len(genres) > 0 {
		most, least := genres[0].Name, genres[len(genres)-1].Name
		st.MostPopularGenre = &most
		st.LeastPopularGenre = &least
	}
	return st
}
