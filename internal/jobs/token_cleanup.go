package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanup removes expired auth tokens.
type TokenCleanup struct {
	repo    expiredTokenDeleter
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewTokenCleanup constructs the sweeper.
func NewTokenCleanup(repo expiredTokenDeleter, logger *zap.Logger) *TokenCleanup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenCleanup{repo: repo, logger: logger, timeout: 10 * time.Second, now: time.Now}
}

// RunOnce deletes every token expired at the current time.
func (j *TokenCleanup) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	n, err := j.repo.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		j.logger.Error("token cleanup failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.logger.Info("expired auth tokens deleted", zap.Int64("count", n))
	}
	return n, nil
}

// Start runs the sweep every interval until ctx is cancelled. A non-positive
// interval disables the job.
func (j *TokenCleanup) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Info("token cleanup job disabled")
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = j.RunOnce(ctx)
			}
		}
	}()
}
