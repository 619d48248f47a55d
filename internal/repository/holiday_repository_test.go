package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidayRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT holiday_date, note FROM holidays ORDER BY holiday_date ASC").
		WillReturnRows(sqlmock.NewRows([]string{"holiday_date", "note"}).
			AddRow(date(2025, 12, 20), "").
			AddRow(date(2025, 12, 25), "冬季休業"))

	holidays, err := NewHolidayRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "冬季休業", holidays[1].Note)
}

func TestHolidayRepositoryListFromDefaultsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	from := date(2025, 12, 20)
	mock.ExpectQuery("WHERE holiday_date >= \\$1").
		WithArgs(from, 10).
		WillReturnRows(sqlmock.NewRows([]string{"holiday_date", "note"}).AddRow(date(2025, 12, 25), ""))

	holidays, err := NewHolidayRepository(db).ListFrom(context.Background(), from, 0)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func TestHolidayRepositoryReplaceFrom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	today := date(2025, 12, 20)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM holidays WHERE holiday_date >= \\$1").WithArgs(today).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO holidays").WithArgs(date(2025, 12, 25), "").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO holidays").WithArgs(date(2025, 12, 26), "").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := NewHolidayRepository(db).ReplaceFrom(context.Background(), today, []time.Time{date(2025, 12, 25), date(2025, 12, 26)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHolidayRepositoryReplaceFromRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	today := date(2025, 12, 20)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM holidays").WithArgs(today).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO holidays").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewHolidayRepository(db).ReplaceFrom(context.Background(), today, []time.Time{date(2025, 12, 25)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert holiday 2025-12-25")
}
