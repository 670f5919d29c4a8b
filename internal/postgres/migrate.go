package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		username      TEXT,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('customer', 'admin')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS genres (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS books (
		id               BIGSERIAL PRIMARY KEY,
		title            TEXT NOT NULL UNIQUE,
		writer           TEXT NOT NULL,
		publisher        TEXT NOT NULL,
		publication_year INT NOT NULL,
		description      TEXT,
		price            NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock_quantity   INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		genre_id         BIGINT NOT NULL REFERENCES genres(id),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at       TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_genre_id ON books(genre_id)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id              BIGSERIAL PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id),
		idempotency_key TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, idempotency_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGSERIAL PRIMARY KEY,
		order_id   BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		book_id    BIGINT NOT NULL REFERENCES books(id),
		position   INT NOT NULL,
		quantity   INT NOT NULL CHECK (quantity >= 1),
		unit_price NUMERIC(12,2) NOT NULL,
		UNIQUE (order_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_book_id ON order_items(book_id)`,
}

// Migrate creates the schema when missing. Statements are idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := db.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
