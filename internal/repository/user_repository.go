package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-linebot/internal/models"
)

// UserRepository provides database access for registered users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByLineUserID returns the registration bound to a LINE user.
func (r *UserRepository) FindByLineUserID(ctx context.Context, lineUserID string) (*models.User, error) {
	const query = `SELECT id, line_user_id, grade, class_number, last_name, first_name, display_name, created_at FROM users WHERE line_user_id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, lineUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by line id: %w", err)
	}
	return &user, nil
}

// Create inserts a committed registration. A second registration for the same
// LINE user fails with ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (line_user_id, grade, class_number, last_name, first_name, display_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		user.LineUserID, user.Grade, user.ClassNumber, user.LastName, user.FirstName, user.DisplayName, user.CreatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
