package catalog

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-bookstore/internal/redisx"
)

// Bestsellers reads the leaderboard kept by the stats consumer. Without Redis, or before
// the first event was projected, it falls back to the sold-desc listing.
func (r *Repo) Bestsellers(ctx context.Context, limit int) ([]Book, error) {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if r.Redis != nil {
		books, err := r.leaderboard(ctx, limit)
		if err == nil && len(books) > 0 {
			return books, nil
		}
		if err != nil {
			log.WithError(err).Warn("bestseller leaderboard unavailable, using database")
		}
	}
	page, err := r.ListBooks(ctx, ListParams{Page: 1, Limit: limit, Sort: "sold-desc"})
	if err != nil {
		return nil, err
	}
	return page.Books, nil
}

func (r *Repo) leaderboard(ctx context.Context, limit int) ([]Book, error) {
	// over-fetch so soft-deleted books do not shrink the result
	zs, err := r.Redis.ZRevRangeWithScores(ctx, redisx.KeyBestsellers, 0, int64(limit*2-1)).Result()
	if err != nil || len(zs) == 0 {
		return nil, err
	}
	ids := make([]int64, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books b JOIN genres g ON g.id = b.genre_id
		WHERE b.id = ANY($1) AND b.deleted_at IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	found, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	out := make([]Book, 0, limit)
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
