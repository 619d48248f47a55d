package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-linebot/internal/models"
)

// HolidayRepository persists closed calendar dates.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs a holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// List returns every holiday in ascending date order.
func (r *HolidayRepository) List(ctx context.Context) ([]models.Holiday, error) {
	const query = `SELECT holiday_date, note FROM holidays ORDER BY holiday_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// ListFrom returns up to limit holidays on or after from.
func (r *HolidayRepository) ListFrom(ctx context.Context, from time.Time, limit int) ([]models.Holiday, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	const query = `SELECT holiday_date, note FROM holidays WHERE holiday_date >= $1 ORDER BY holiday_date ASC LIMIT $2`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, limit); err != nil {
		return nil, fmt.Errorf("list upcoming holidays: %w", err)
	}
	return holidays, nil
}

// ReplaceFrom swaps every holiday on or after from for the given dates inside
// one transaction. Earlier holidays are untouched.
func (r *HolidayRepository) ReplaceFrom(ctx context.Context, from time.Time, dates []time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace holidays tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM holidays WHERE holiday_date >= $1", from); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete future holidays: %w", err)
	}
	const insert = `INSERT INTO holidays (holiday_date, note) VALUES ($1, $2)`
	for _, d := range dates {
		if _, err := tx.ExecContext(ctx, insert, d, ""); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert holiday %s: %w", d.Format(models.DateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace holidays tx: %w", err)
	}
	return len(dates), nil
}
