package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/models"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
)

type userLookup interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*models.User, error)
}

type adminLookup interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*models.Admin, error)
}

// Roles holds the records an identity is bound to. Either may be nil.
type Roles struct {
	User  *models.User
	Admin *models.Admin
}

// IsUser reports whether the identity completed registration.
func (r Roles) IsUser() bool { return r.User != nil }

// IsAdmin reports whether the identity is mapped to an administrator.
func (r Roles) IsAdmin() bool { return r.Admin != nil }

// RoleResolver looks up both identity roles.
type RoleResolver struct {
	users  userLookup
	admins adminLookup
	logger *zap.Logger
}

// NewRoleResolver constructs a role resolver.
func NewRoleResolver(users userLookup, admins adminLookup, logger *zap.Logger) *RoleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{users: users, admins: admins, logger: logger}
}

// Resolve runs both lookups. Any storage failure yields ErrServiceUnavailable
// and no partial roles.
func (r *RoleResolver) Resolve(ctx context.Context, lineUserID string) (Roles, error) {
	var roles Roles

	user, err := r.users.FindByLineUserID(ctx, lineUserID)
	switch {
	case err == nil:
		roles.User = user
	case !errors.Is(err, sql.ErrNoRows):
		r.logger.Error("user role lookup failed", zap.String("line_user_id", lineUserID), zap.Error(err))
		return Roles{}, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "user lookup failed")
	}

	admin, err := r.admins.FindByLineUserID(ctx, lineUserID)
	switch {
	case err == nil:
		roles.Admin = admin
	case !errors.Is(err, sql.ErrNoRows):
		r.logger.Error("admin role lookup failed", zap.String("line_user_id", lineUserID), zap.Error(err))
		return Roles{}, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "admin lookup failed")
	}

	return roles, nil
}
