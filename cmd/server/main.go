package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finanzas-backend/internal/config"
	"finanzas-backend/internal/database"
	"finanzas-backend/internal/logging"
	"finanzas-backend/internal/server"
	"finanzas-backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	cfg.LogNotices(logger)

	st, err := openStore(cfg)
	if err != nil {
		logger.Fatal("store", zap.String("type", cfg.DatabaseType), zap.Error(err))
	}

	app := server.New(cfg, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.DatabaseType),
		zap.String("timezone", cfg.Location.String()))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseType == "memory" {
		return store.NewMemoryStore(), nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}
