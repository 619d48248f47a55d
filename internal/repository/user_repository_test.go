package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-linebot/internal/models"
)

func TestUserRepositoryFindByLineUserID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "line_user_id", "grade", "class_number", "last_name", "first_name", "display_name", "created_at"}).
		AddRow(1, "U1", 2, 1, "山田", "太郎", "たろう", time.Now())
	mock.ExpectQuery("SELECT id, line_user_id").WithArgs("U1").WillReturnRows(rows)

	user, err := NewUserRepository(db).FindByLineUserID(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "山田 太郎", user.FullName())
}

func TestUserRepositoryFindByLineUserIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, line_user_id").WithArgs("U404").WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(db).FindByLineUserID(context.Background(), "U404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("U1", 2, 1, "山田", "太郎", "たろう", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	user := &models.User{LineUserID: "U1", Grade: 2, ClassNumber: 1, LastName: "山田", FirstName: "太郎", DisplayName: "たろう"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	assert.Equal(t, int64(42), user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := NewUserRepository(db).Create(context.Background(), &models.User{LineUserID: "U1"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestAdminRepositoryFindByLineUserID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT admin_id, admin_line_id, name FROM admins").
		WithArgs("U9").
		WillReturnRows(sqlmock.NewRows([]string{"admin_id", "admin_line_id", "name"}).AddRow(9, "U9", "先生"))

	admin, err := NewAdminRepository(db).FindByLineUserID(context.Background(), "U9")
	require.NoError(t, err)
	assert.Equal(t, int64(9), admin.ID)
}

func TestAdminRepositoryWrapsDriverErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT admin_id").WillReturnError(sql.ErrConnDone)

	_, err := NewAdminRepository(db).FindByLineUserID(context.Background(), "U9")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "find admin by line id")
}
