package demo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crudgrid/internal/storage/postgres"
)

// Account is a login account of the demo application.
type Account struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Enabled      bool      `db:"enabled"`
}

// CheckPassword verifies a plaintext password against the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// IsAdmin reports whether the account carries the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == "admin"
}

// FindAccount loads a login account by username, nil when absent.
func FindAccount(ctx context.Context, db postgres.Querier, username string) (*Account, error) {
	q := postgres.Builder().
		Select("id", "username", "email", "password_hash", "role", "enabled").
		From("users").
		Where(sq.Eq{"username": username}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build account query: %w", err)
	}

	var account Account
	if err := pgxscan.Get(ctx, db, &account, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

// DepartmentExists answers whether a department id is present. Used as the
// resolver of the department reference filter.
func DepartmentExists(ctx context.Context, db postgres.Querier) func(id uuid.UUID) bool {
	return func(id uuid.UUID) bool {
		var exists bool
		err := db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)", id).Scan(&exists)
		return err == nil && exists
	}
}
