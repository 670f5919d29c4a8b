package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo reads committed orders. Orders are immutable once placed.
type Repo struct{ DB *pgxpool.Pool }

func scanOrder(row pgx.CollectableRow) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CreatedAt)
	return o, err
}

func (r *Repo) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, created_at FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder returns ErrOrderNotFound for orders owned by another user.
func (r *Repo) GetOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	return r.one(ctx, `SELECT id, user_id, created_at FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID)
}

func (r *Repo) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*Order, error) {
	return r.one(ctx, `SELECT id, user_id, created_at FROM orders WHERE user_id = $1 AND idempotency_key = $2`, userID, key)
}

func (r *Repo) one(ctx context.Context, sql string, args ...any) (*Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	list := []Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *Repo) attachItems(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	idx := make(map[int64]int, len(list))
	for i, o := range list {
		ids[i] = o.ID
		idx[o.ID] = i
	}

	rows, err := r.DB.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.book_id, oi.position, oi.quantity, oi.unit_price,
		       b.title, b.writer, b.price
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l  LineItem
			bs BookSummary
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.BookID, &l.Position, &l.Quantity, &l.UnitPrice,
			&bs.Title, &bs.Writer, &bs.Price); err != nil {
			return err
		}
		bs.ID = l.BookID
		l.Book = &bs
		o := &list[idx[l.OrderID]]
		o.Items = append(o.Items, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range list {
		list[i].Total = orderTotal(list[i].Items)
	}
	return nil
}
