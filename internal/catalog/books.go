package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-bookstore/internal/postgres"
)

// Repo is the books and genres repository. Redis is optional and only backs Bestsellers.
type Repo struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

const bookColumns = `
	b.id, b.title, b.writer, b.publisher, b.publication_year, b.description, b.price,
	b.stock_quantity, b.genre_id, g.name,
	COALESCE((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.book_id = b.id), 0) AS total_sold,
	b.created_at, b.updated_at`

func scanBook(row pgx.CollectableRow) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Writer, &b.Publisher, &b.PublicationYear, &b.Description, &b.Price,
		&b.StockQuantity, &b.GenreID, &b.Genre.Name, &b.TotalSold, &b.CreatedAt, &b.UpdatedAt)
	b.Genre.ID = b.GenreID
	return b, err
}

func (r *Repo) CreateBook(ctx context.Context, in NewBook) (*Book, error) {
	if err := validateNewBook(in); err != nil {
		return nil, err
	}

	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO books (title, writer, publisher, publication_year, description, price, stock_quantity, genre_id)
		SELECT $1, $2, $3, $4, $5, $6, $7, g.id
		FROM genres g WHERE g.id = $8 AND g.deleted_at IS NULL
		RETURNING id`,
		strings.TrimSpace(in.Title), in.Writer, in.Publisher, in.PublicationYear, in.Description,
		in.Price, in.StockQuantity, in.GenreID,
	).Scan(&id)
	if err := writeErr("book", err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: genre %d does not exist", ErrInvalidInput, in.GenreID)
		}
		return nil, err
	}
	return r.GetBook(ctx, id)
}

// GetBook returns active books only.
func (r *Repo) GetBook(ctx context.Context, id int64) (*Book, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books b JOIN genres g ON g.id = b.genre_id
		WHERE b.id = $1 AND b.deleted_at IS NULL`, id)
	if err != nil {
		return nil, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBooks is the storefront listing: active, in-stock books.
func (r *Repo) ListBooks(ctx context.Context, p ListParams) (*Page, error) {
	return r.list(ctx, p, true)
}

// ListByGenre lists every active book of a genre, including sold-out ones.
func (r *Repo) ListByGenre(ctx context.Context, genreID int64, p ListParams) (*Page, error) {
	p.GenreID = genreID
	return r.list(ctx, p, false)
}

func (r *Repo) list(ctx context.Context, p ListParams, inStockOnly bool) (*Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}

	where := []string{"b.deleted_at IS NULL"}
	var args []any
	if inStockOnly {
		where = append(where, "b.stock_quantity > 0")
	}
	if p.GenreID > 0 {
		args = append(args, p.GenreID)
		where = append(where, fmt.Sprintf("b.genre_id = $%d", len(args)))
	}
	if p.Search != "" {
		args = append(args, likePattern(p.Search))
		where = append(where, fmt.Sprintf("b.title ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM books b WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	args = append(args, p.Limit, p.offset())
	rows, err := r.DB.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM books b JOIN genres g ON g.id = b.genre_id
		WHERE %s
		ORDER BY %s, b.id
		LIMIT $%d OFFSET $%d`, bookColumns, cond, p.orderBy(), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return &Page{Books: books, Total: total, Page: p.Page, TotalPages: totalPages(total, p.Limit)}, nil
}

// UpdateBook applies only the fields set in the patch.
func (r *Repo) UpdateBook(ctx context.Context, id int64, p BookPatch) (*Book, error) {
	if err := validatePatch(p); err != nil {
		return nil, err
	}
	if p.GenreID != nil {
		if _, err := r.GetGenre(ctx, *p.GenreID); errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: genre %d does not exist", ErrInvalidInput, *p.GenreID)
		} else if err != nil {
			return nil, err
		}
	}

	var (
		sets []string
		args = []any{id}
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		set("title", strings.TrimSpace(*p.Title))
	}
	if p.Writer != nil {
		set("writer", *p.Writer)
	}
	if p.Publisher != nil {
		set("publisher", *p.Publisher)
	}
	if p.PublicationYear != nil {
		set("publication_year", *p.PublicationYear)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.StockQuantity != nil {
		set("stock_quantity", *p.StockQuantity)
	}
	if p.GenreID != nil {
		set("genre_id", *p.GenreID)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	ct, err := r.DB.Exec(ctx, fmt.Sprintf(`
		UPDATE books SET %s, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, strings.Join(sets, ", ")), args...)
	if err := writeErr("book", err); err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetBook(ctx, id)
}

func (r *Repo) DeleteBook(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `UPDATE books SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// writeErr maps constraint violations of an insert or update to package errors.
func writeErr(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	case postgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: unknown genre", ErrInvalidInput)
	case postgres.IsCheckViolation(err):
		return fmt.Errorf("%w: %s violates a constraint", ErrInvalidInput, what)
	}
	return fmt.Errorf("write %s: %w", what, err)
}
