package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

func scanGenre(row pgx.CollectableRow) (Genre, error) {
	var g Genre
	err := row.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func genreName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return name, nil
}

func (r *Repo) CreateGenre(ctx context.Context, name string) (*Genre, error) {
	name, err := genreName(name)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(ctx, `
		INSERT INTO genres (name) VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name)
	if err != nil {
		return nil, writeErr("genre", err)
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGenre)
	if err != nil {
		return nil, writeErr("genre", err)
	}
	return &g, nil
}

func (r *Repo) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, created_at, updated_at FROM genres
		WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanGenre)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Genre{}
	}
	return out, nil
}

func (r *Repo) GetGenre(ctx context.Context, id int64) (*Genre, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, created_at, updated_at FROM genres
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, err
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGenre)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) UpdateGenre(ctx context.Context, id int64, name string) (*Genre, error) {
	name, err := genreName(name)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(ctx, `
		UPDATE genres SET name = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, created_at, updated_at`, id, name)
	if err != nil {
		return nil, writeErr("genre", err)
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGenre)
	if err != nil {
		return nil, writeErr("genre", err)
	}
	return &g, nil
}

// DeleteGenre soft-deletes the genre. Its books stay in place and keep their history.
func (r *Repo) DeleteGenre(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `UPDATE genres SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
