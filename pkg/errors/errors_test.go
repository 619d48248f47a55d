package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrTokenExpired, "expired at 10:00")
	assert.True(t, errors.Is(cloned, ErrTokenExpired))
	assert.False(t, errors.Is(cloned, ErrTokenInvalid))

	wrapped := Storage(sql.ErrTxDone, "failed to replace holidays")
	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.True(t, errors.Is(wrapped, sql.ErrTxDone))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(errors.New("boom"), "X", http.StatusTeapot, "outer")
	assert.Equal(t, "outer: boom", err.Error())
	assert.Equal(t, "outer", Clone(err, "").Message)
}
