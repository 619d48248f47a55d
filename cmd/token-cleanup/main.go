package main

import (
	"context"
	"log"
	"time"

	internaljobs "github.com/noah-isme/sma-linebot/internal/jobs"
	"github.com/noah-isme/sma-linebot/internal/repository"
	"github.com/noah-isme/sma-linebot/pkg/config"
	"github.com/noah-isme/sma-linebot/pkg/database"
	"github.com/noah-isme/sma-linebot/pkg/logger"
)

// Deletes expired auth tokens once and exits. Meant for cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := internaljobs.NewTokenCleanup(repository.NewTokenRepository(db), logr).RunOnce(ctx)
	if err != nil {
		logr.Sugar().Fatalw("token cleanup failed", "error", err)
	}
	logr.Sugar().Infow("token cleanup finished", "deleted", n)
}
