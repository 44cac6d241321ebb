package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/config"
	"dkstore_back_end/internal/database"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/logger"
	"dkstore_back_end/internal/routes"
	"dkstore_back_end/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Env, cfg.LogLevel)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.ExposeErrors(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		// The store runs without cache, rate limits or live cart sync.
		log.Warn("redis unavailable, continuing without it", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	minioClient, err := database.ConnectMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Warn("minio unavailable, image uploads disabled", "error", err)
		minioClient = nil
	}

	deps := routes.NewDeps(cfg, db, cache.NewRedis(redisClient), services.NewImageStore(minioClient, cfg.MinIO))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
