package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbalthasar/stationpix/internal/models"
)

// UserStore reads photographer accounts from PostgreSQL. Account management
// is owned by the profile service; moderation only needs lookups.
type UserStore struct {
	db *DB
}

// NewUserStore creates a new user store.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// FindByID loads a user, or nil if unknown.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, name, email, license, email_verified, anonymous
		FROM users
		WHERE id = $1
	`

	var user models.User
	var email sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&email,
		&user.License,
		&user.EmailVerified,
		&user.Anonymous,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if email.Valid {
		user.Email = email.String
	}

	return &user, nil
}
