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

// PendingRegistrationRepository persists in-progress registrations.
type PendingRegistrationRepository struct {
	db *sqlx.DB
}

// NewPendingRegistrationRepository constructs the repository.
func NewPendingRegistrationRepository(db *sqlx.DB) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: db}
}

// Find returns the pending registration for a LINE user.
func (r *PendingRegistrationRepository) Find(ctx context.Context, lineUserID string) (*models.PendingRegistration, error) {
	const query = `SELECT line_user_id, grade, class_number, last_name, first_name, display_name, created_at, updated_at
FROM pending_registrations WHERE line_user_id = $1`
	var pending models.PendingRegistration
	if err := r.db.GetContext(ctx, &pending, query, lineUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find pending registration: %w", err)
	}
	return &pending, nil
}

// Start creates an empty pending registration, clearing any earlier candidate data.
func (r *PendingRegistrationRepository) Start(ctx context.Context, lineUserID string) error {
	now := time.Now().UTC()
	const query = `INSERT INTO pending_registrations (line_user_id, created_at, updated_at) VALUES ($1, $2, $2)
ON CONFLICT (line_user_id) DO UPDATE SET grade = NULL, class_number = NULL, last_name = NULL, first_name = NULL,
display_name = NULL, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, lineUserID, now); err != nil {
		return fmt.Errorf("start pending registration: %w", err)
	}
	return nil
}

// Fill stores parsed candidate data on an existing pending registration.
func (r *PendingRegistrationRepository) Fill(ctx context.Context, pending *models.PendingRegistration) error {
	pending.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pending_registrations SET grade = :grade, class_number = :class_number, last_name = :last_name,
first_name = :first_name, display_name = :display_name, updated_at = :updated_at WHERE line_user_id = :line_user_id`
	res, err := r.db.NamedExecContext(ctx, query, pending)
	if err != nil {
		return fmt.Errorf("fill pending registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fill pending registration: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("fill pending registration: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes the pending registration. Deleting a missing row is not an error.
func (r *PendingRegistrationRepository) Delete(ctx context.Context, lineUserID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM pending_registrations WHERE line_user_id = $1", lineUserID); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}
