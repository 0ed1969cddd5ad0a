package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gatewarden/gatewarden/internal/api/routes"
	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/database"
	"github.com/gatewarden/gatewarden/internal/logger"
	"github.com/gatewarden/gatewarden/internal/notify"
	"github.com/gatewarden/gatewarden/internal/pipeline"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/retention"
	"github.com/gatewarden/gatewarden/internal/server"
	"github.com/gatewarden/gatewarden/internal/services"
	"github.com/gatewarden/gatewarden/internal/version"
	"github.com/gatewarden/gatewarden/internal/waf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Logging with rotation, to both stdout and file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("ensure log directory: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "gatewarden.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().Infof("starting %s %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rate limit state lives in Redis when configured, otherwise in
	// process memory. Redis being down at boot is not fatal: the limiter
	// fails open per request anyway.
	var store ratelimit.Store
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log().WithField("error", err.Error()).Warn("redis unavailable, falling back to in-memory rate limiting")
			store = ratelimit.NewMemoryStore()
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	} else {
		store = ratelimit.NewMemoryStore()
	}

	clk := clock.NewReal()
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit, cfg.RateWindow, clk)

	catalog := waf.DefaultCatalog()
	inspector := waf.NewInspector(catalog, cfg.MaxRequestSize)

	if inserted, err := services.NewPatternService(db).Seed(catalog); err != nil {
		logger.Log().WithField("error", err.Error()).Warn("failed to seed attack patterns")
	} else if inserted > 0 {
		logger.Log().WithField("inserted", inserted).Info("seeded attack patterns")
	}

	audit := services.NewAuditService(db)
	defer audit.Close()

	pl := pipeline.New(limiter, inspector, audit, cfg.ExemptPrefixes, clk)
	notifier := notify.New(cfg.AlertURL)

	sweeper := retention.NewSweeper(audit, cfg.LogRetentionDays, clk)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	srv, err := server.New(cfg, routes.Deps{
		DB:       db,
		Limiter:  limiter,
		Pipeline: pl,
		Audit:    audit,
		Notifier: notifier,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
