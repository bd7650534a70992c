package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/user"
	"github.com/jmoiron/sqlx"
)

const selectUserByID = `
SELECT id, username, full_name, email, COALESCE(department, '') AS department, role, created_at
FROM users
WHERE id = ?`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(selectUserByID), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
