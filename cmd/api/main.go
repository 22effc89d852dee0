package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/app"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/clock"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/config"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/logger"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/storage/postgres"
	transporthttp "github.com/GGyongfeng/HuiXueJiaoPei/internal/transport/http"
	"github.com/GGyongfeng/HuiXueJiaoPei/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, cfgWarnings := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.Env); err != nil {
		// Logger is still the no-op default here; stderr is all we have.
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Log.Sync()
	}()

	for _, warning := range cfgWarnings {
		logger.Log.Warn(warning)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Log.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(cfg.DatabaseURL); err != nil {
		logger.Log.Fatal("apply migrations", zap.Error(err))
	}

	orderRepo := postgres.NewOrderRepository(pool)
	orderSvc := app.NewOrderService(orderRepo, clock.NewSystem())

	handler := transporthttp.NewRouter(orderSvc, transporthttp.RouterConfig{
		CORSOrigins: parseCSV(cfg.CORSOrigins),
		StaticDir:   cfg.StaticDir,
		AuthSecret:  cfg.AuthSecret,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Log.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("server shutdown error", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
