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

// TokenRepository persists single-use auth tokens.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository constructs a token repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a freshly issued token.
func (r *TokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	const query = `INSERT INTO auth_tokens (token_hash, admin_id, user_id, created_at, expires_at)
VALUES (:token_hash, :admin_id, :user_id, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create auth token: %w", err)
	}
	return nil
}

// FindByHash looks a token up without consuming it.
func (r *TokenRepository) FindByHash(ctx context.Context, tokenHash string) (*models.AuthToken, error) {
	const query = `SELECT token_hash, admin_id, user_id, created_at, expires_at FROM auth_tokens WHERE token_hash = $1`
	var token models.AuthToken
	if err := r.db.GetContext(ctx, &token, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find auth token: %w", err)
	}
	return &token, nil
}

// Claim deletes the token and returns the deleted row in one statement. Only
// one caller can ever receive a given row, which makes consumption exactly-once.
func (r *TokenRepository) Claim(ctx context.Context, tokenHash string) (*models.AuthToken, error) {
	const query = `DELETE FROM auth_tokens WHERE token_hash = $1 RETURNING token_hash, admin_id, user_id, created_at, expires_at`
	var token models.AuthToken
	if err := r.db.GetContext(ctx, &token, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("claim auth token: %w", err)
	}
	return &token, nil
}

// Delete removes a token if present.
func (r *TokenRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM auth_tokens WHERE token_hash = $1", tokenHash); err != nil {
		return fmt.Errorf("delete auth token: %w", err)
	}
	return nil
}

// DeleteExpired removes every token whose expiry is at or before now.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM auth_tokens WHERE expires_at <= $1", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired auth tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired auth tokens: %w", err)
	}
	return n, nil
}
