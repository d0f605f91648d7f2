package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/taskdeck/backend/internal/auth"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/handler"
	"github.com/taskdeck/backend/internal/observability"
	"github.com/taskdeck/backend/internal/service"
)

// @title Todo API
// @version 1.0
// @description Multi-user todo service with bearer-token authentication.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log, os.Stdout)
	zerolog.DefaultContextLogger = &logger

	if err := observability.InitSentry(cfg.Sentry); err != nil {
		logger.Warn().Err(err).Msg("sentry disabled")
	}
	defer observability.FlushSentry()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server exited")
		observability.FlushSentry()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		return err
	}
	codec, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		return err
	}
	authSvc, err := service.NewAuthService(store, hasher, codec)
	if err != nil {
		return err
	}
	todoSvc := service.NewTodoService(store)

	gin.SetMode(cfg.Server.GinMode)
	router := handler.NewRouter(handler.RouterConfig{
		Logger:               logger,
		CORSAllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.Server.CORSAllowCredentials,
	}, authSvc, todoSvc, store)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (db.Store, func(), error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return db.NewMemory(), func() {}, nil
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("database migrations applied")
	return db.NewPostgres(pool), pool.Close, nil
}
