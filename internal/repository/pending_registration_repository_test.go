package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-linebot/internal/models"
)

var pendingColumns = []string{"line_user_id", "grade", "class_number", "last_name", "first_name", "display_name", "created_at", "updated_at"}

func TestPendingRegistrationRepositoryFindEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("FROM pending_registrations").
		WithArgs("U1").
		WillReturnRows(sqlmock.NewRows(pendingColumns).AddRow("U1", nil, nil, nil, nil, nil, now, now))

	pending, err := NewPendingRegistrationRepository(db).Find(context.Background(), "U1")
	require.NoError(t, err)
	assert.False(t, pending.Filled())
	assert.Nil(t, pending.Grade)
}

func TestPendingRegistrationRepositoryFindFilled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("FROM pending_registrations").
		WithArgs("U1").
		WillReturnRows(sqlmock.NewRows(pendingColumns).AddRow("U1", 3, 2, "佐藤", "花子", "はなこ", now, now))

	pending, err := NewPendingRegistrationRepository(db).Find(context.Background(), "U1")
	require.NoError(t, err)
	require.True(t, pending.Filled())
	assert.Equal(t, 3, *pending.Grade)
	assert.Equal(t, "はなこ", *pending.DisplayName)
}

func TestPendingRegistrationRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM pending_registrations").WithArgs("U1").WillReturnError(sql.ErrNoRows)

	_, err := NewPendingRegistrationRepository(db).Find(context.Background(), "U1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPendingRegistrationRepositoryStartResetsFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO pending_registrations .* ON CONFLICT \\(line_user_id\\) DO UPDATE SET grade = NULL").
		WithArgs("U1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPendingRegistrationRepository(db).Start(context.Background(), "U1"))
}

func TestPendingRegistrationRepositoryFill(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE pending_registrations SET").
		WithArgs(2, 1, "山田", "太郎", "たろう", sqlmock.AnyArg(), "U1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pending := &models.PendingRegistration{LineUserID: "U1", Grade: ptr(2), ClassNumber: ptr(1), LastName: ptr("山田"), FirstName: ptr("太郎"), DisplayName: ptr("たろう")}
	require.NoError(t, NewPendingRegistrationRepository(db).Fill(context.Background(), pending))
}

func TestPendingRegistrationRepositoryFillMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE pending_registrations SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPendingRegistrationRepository(db).Fill(context.Background(), &models.PendingRegistration{LineUserID: "U1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPendingRegistrationRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM pending_registrations").WithArgs("U1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPendingRegistrationRepository(db).Delete(context.Background(), "U1"))
}
