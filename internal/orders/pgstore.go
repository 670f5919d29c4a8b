package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-bookstore/internal/postgres"
)

// PGStore runs placements in a READ COMMITTED transaction. No-oversell comes from the
// conditional UPDATE in TryDecrementStock: the row lock it takes serializes placements
// touching the same book, and the stock predicate is re-checked after the lock is granted.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return txErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return txErr("", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return txErr("commit", err)
	}
	return nil
}

func txErr(op string, err error) error {
	if postgres.IsRetryable(err) {
		err = fmt.Errorf("%w: %w", ErrTxConflict, err)
	}
	if op == "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) FindActiveItem(ctx context.Context, id int64) (Item, error) {
	var it Item
	err := t.tx.QueryRow(ctx, `
		SELECT id, title, price, stock_quantity
		FROM books WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&it.ID, &it.Title, &it.Price, &it.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, &ItemNotFoundError{ItemID: id}
	}
	if err != nil {
		return Item{}, fmt.Errorf("find book %d: %w", id, err)
	}
	return it, nil
}

func (t *pgTx) TryDecrementStock(ctx context.Context, id int64, amount int) (DecrementResult, int, error) {
	ct, err := t.tx.Exec(ctx, `
		UPDATE books SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND deleted_at IS NULL AND stock_quantity >= $2`, id, amount)
	if err != nil {
		return 0, 0, fmt.Errorf("decrement book %d: %w", id, err)
	}
	if ct.RowsAffected() == 1 {
		return DecrementApplied, 0, nil
	}

	var available int
	err = t.tx.QueryRow(ctx, `SELECT stock_quantity FROM books WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return DecrementAbsent, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read stock %d: %w", id, err)
	}
	return DecrementInsufficient, available, nil
}

func (t *pgTx) CreateOrder(ctx context.Context, o NewOrder) (Order, error) {
	out := Order{UserID: o.UserID}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, idempotency_key)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at`, o.UserID, o.IdempotencyKey,
	).Scan(&out.ID, &out.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return Order{}, fmt.Errorf("insert order: %w", ErrDuplicateOrder)
	}
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	b := &pgx.Batch{}
	for _, l := range o.Lines {
		b.Queue(`
			INSERT INTO order_items (order_id, book_id, position, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, out.ID, l.BookID, l.Position, l.Quantity, l.UnitPrice)
	}
	br := t.tx.SendBatch(ctx, b)

	out.Items = make([]LineItem, len(o.Lines))
	for i, l := range o.Lines {
		l.OrderID = out.ID
		if err := br.QueryRow().Scan(&l.ID); err != nil {
			_ = br.Close()
			return Order{}, fmt.Errorf("insert order item %d: %w", l.Position, err)
		}
		out.Items[i] = l
	}
	if err := br.Close(); err != nil {
		return Order{}, fmt.Errorf("insert order items: %w", err)
	}

	out.Total = orderTotal(out.Items)
	return out, nil
}
