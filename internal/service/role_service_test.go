package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-linebot/internal/models"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
)

type stubUserRepo struct {
	users     map[string]*models.User
	findErr   error
	createErr error
	created   []*models.User
}

func (s *stubUserRepo) FindByLineUserID(ctx context.Context, id string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.users == nil {
		s.users = map[string]*models.User{}
	}
	user.ID = int64(len(s.created) + 1)
	s.users[user.LineUserID] = user
	s.created = append(s.created, user)
	return nil
}

type stubAdminRepo struct {
	admins  map[string]*models.Admin
	findErr error
}

func (s *stubAdminRepo) FindByLineUserID(ctx context.Context, id string) (*models.Admin, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if a, ok := s.admins[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func TestRoleResolverResolve(t *testing.T) {
	users := &stubUserRepo{users: map[string]*models.User{"U1": {ID: 1, LineUserID: "U1"}, "U2": {ID: 2, LineUserID: "U2"}}}
	admins := &stubAdminRepo{admins: map[string]*models.Admin{"U2": {ID: 9, LineUserID: "U2"}, "U3": {ID: 10, LineUserID: "U3"}}}
	resolver := NewRoleResolver(users, admins, nil)

	cases := []struct {
		id          string
		user, admin bool
	}{
		{"U0", false, false},
		{"U1", true, false},
		{"U2", true, true},
		{"U3", false, true},
	}
	for _, tc := range cases {
		roles, err := resolver.Resolve(context.Background(), tc.id)
		require.NoError(t, err, tc.id)
		assert.Equal(t, tc.user, roles.IsUser(), tc.id)
		assert.Equal(t, tc.admin, roles.IsAdmin(), tc.id)
	}
}

func TestRoleResolverStorageFailure(t *testing.T) {
	resolver := NewRoleResolver(&stubUserRepo{findErr: errors.New("timeout")}, &stubAdminRepo{}, nil)
	roles, err := resolver.Resolve(context.Background(), "U1")
	assert.ErrorIs(t, err, appErrors.ErrServiceUnavailable)
	assert.False(t, roles.IsUser())

	resolver = NewRoleResolver(&stubUserRepo{users: map[string]*models.User{"U1": {ID: 1}}}, &stubAdminRepo{findErr: errors.New("timeout")}, nil)
	roles, err = resolver.Resolve(context.Background(), "U1")
	assert.ErrorIs(t, err, appErrors.ErrServiceUnavailable)
	assert.False(t, roles.IsUser(), "no partial roles on failure")
}
