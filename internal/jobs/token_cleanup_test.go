package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type deleterMock struct {
	calls int32
	n     int64
	err   error
	last  atomic.Value
}

func (d *deleterMock) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	atomic.AddInt32(&d.calls, 1)
	d.last.Store(now)
	return d.n, d.err
}

func TestTokenCleanupRunOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	repo := &deleterMock{n: 3}
	job := NewTokenCleanup(repo, zap.New(core))
	fixed := time.Date(2025, 12, 20, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	job.now = func() time.Time { return fixed }

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, fixed.UTC(), repo.last.Load())
	assert.Equal(t, 1, logs.FilterMessage("expired auth tokens deleted").Len())

	repo.err = errors.New("timeout")
	_, err = job.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("token cleanup failed").Len())
}

func TestTokenCleanupStart(t *testing.T) {
	repo := &deleterMock{}
	job := NewTokenCleanup(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job.Start(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&repo.calls) >= 2 }, time.Second, 5*time.Millisecond)

	disabled := &deleterMock{}
	NewTokenCleanup(disabled, nil).Start(ctx, 0)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&disabled.calls))
}
