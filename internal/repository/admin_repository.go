package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-linebot/internal/models"
)

// AdminRepository reads administrator mappings. The bot never writes them.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an admin repository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByLineUserID returns the admin mapped to a LINE user.
func (r *AdminRepository) FindByLineUserID(ctx context.Context, lineUserID string) (*models.Admin, error) {
	const query = `SELECT admin_id, admin_line_id, name FROM admins WHERE admin_line_id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, lineUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by line id: %w", err)
	}
	return &admin, nil
}
