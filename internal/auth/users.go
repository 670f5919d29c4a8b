package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-bookstore/internal/postgres"
)

type UserStore interface {
	CreateUser(ctx context.Context, email string, username *string, hash, role string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
}

type Repo struct{ DB *pgxpool.Pool }

const userColumns = `id, email, username, role, password_hash, created_at`

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (r *Repo) CreateUser(ctx context.Context, email string, username *string, hash, role string) (*User, error) {
	rows, err := r.DB.Query(ctx, `
		INSERT INTO users (email, username, password_hash, role) VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, email, username, hash, role)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if postgres.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *Repo) UserByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *Repo) one(ctx context.Context, sql string, args ...any) (*User, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PromoteAdmins grants the admin role to the given emails that registered before they were listed.
func (r *Repo) PromoteAdmins(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	norm := make([]string, len(emails))
	for i, e := range emails {
		norm[i] = normalizeEmail(e)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET role = 'admin', updated_at = NOW()
		WHERE email = ANY($1) AND role <> 'admin'`, norm)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
