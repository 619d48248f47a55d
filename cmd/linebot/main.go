package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-linebot/api/swagger"
	"github.com/noah-isme/sma-linebot/internal/handler"
	internaljobs "github.com/noah-isme/sma-linebot/internal/jobs"
	internalmiddleware "github.com/noah-isme/sma-linebot/internal/middleware"
	"github.com/noah-isme/sma-linebot/internal/repository"
	"github.com/noah-isme/sma-linebot/internal/service"
	"github.com/noah-isme/sma-linebot/pkg/cache"
	"github.com/noah-isme/sma-linebot/pkg/config"
	"github.com/noah-isme/sma-linebot/pkg/database"
	"github.com/noah-isme/sma-linebot/pkg/jobs"
	"github.com/noah-isme/sma-linebot/pkg/logger"
	"github.com/noah-isme/sma-linebot/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-linebot/pkg/middleware/requestid"
	"github.com/noah-isme/sma-linebot/web"
)

// @title SMA LINE Bot
// @version 1.0.0
// @description LINE webhook bot for student registration and the admin holiday form
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, profile cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	gateway, err := service.NewLineGatewayFromToken(cfg.LINE.ChannelAccessToken)
	if err != nil {
		logr.Sugar().Fatalw("failed to init messaging api client", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	pendingRepo := repository.NewPendingRegistrationRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, service.CacheOptions{
		Enabled:    redisClient != nil,
		Namespace:  "linebot",
		DefaultTTL: cfg.Profile.CacheTTL,
	}, logr)
	profileSvc := service.NewProfileService(gateway, cacheSvc, cfg.Profile.CacheTTL, cfg.Profile.FallbackName, logr)
	tokenSvc := service.NewTokenService(tokenRepo, service.TokenConfig{Secret: cfg.Token.Secret, Issuer: cfg.Token.Issuer}, metricsSvc, logr)
	roleResolver := service.NewRoleResolver(userRepo, adminRepo, logr)

	commands := service.NewCommands(tokenSvc, holidayRepo, service.CommandConfig{
		HostURL:         cfg.HostURL,
		HolidayTokenTTL: cfg.Holiday.TokenTTL,
		Location:        cfg.Holiday.Location,
	}, logr)
	adminTable, userTable, err := commands.Tables()
	if err != nil {
		logr.Sugar().Fatalw("invalid dispatch tables", "error", err)
	}
	conversationSvc := service.NewConversationService(roleResolver, pendingRepo, userRepo, profileSvc, adminTable, userTable, metricsSvc, logr)
	holidaySvc := service.NewHolidayService(tokenSvc, holidayRepo, validator.New(), cfg.Holiday.Location, logr)

	messageQueue := jobs.NewQueue("line-messages", service.NewMessageJobHandler(conversationSvc, gateway, logr), jobs.QueueConfig{
		Workers:    cfg.Webhook.Workers,
		BufferSize: cfg.Webhook.QueueSize,
		JobTimeout: 30 * time.Second,
		Logger:     logr,
	})
	messageQueue.Start(ctx)
	defer messageQueue.Stop()

	internaljobs.NewTokenCleanup(tokenRepo, logr).Start(ctx, cfg.Token.CleanupInterval)

	templates, err := web.Templates()
	if err != nil {
		logr.Sugar().Fatalw("failed to parse templates", "error", err)
	}

	webhookHandler := handler.NewWebhookHandler(cfg.LINE.ChannelSecret, messageQueue, metricsSvc, logr)
	holidayHandler := handler.NewHolidayHandler(holidaySvc, templates, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.POST("/callback", webhookHandler.Callback)

	admin := r.Group("/admin", cors.New(cfg.CORSAllowedOrigins))
	admin.GET("/holiday", holidayHandler.Form)
	admin.POST("/holiday/submit", holidayHandler.Submit)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
