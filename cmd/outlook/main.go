package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-outlook-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-outlook-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-outlook-service/internal/adapter/sqlstore"
	"github.com/couchcryptid/weather-outlook-service/internal/app"
	"github.com/couchcryptid/weather-outlook-service/internal/config"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.SettingsDBDriver, cfg.SettingsDBDSN, logger)
	if err != nil {
		logger.Error("failed to open settings store", "error", err, "driver", cfg.SettingsDBDriver)
		os.Exit(1)
	}

	deps := app.Deps{Store: store}
	var writer *kafkaadapter.Writer
	if cfg.PublishExports() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		deps.Publisher = writer
		logger.Info("export publishing enabled", "topic", cfg.KafkaExportTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("export publishing disabled")
	}

	svc := app.NewService(cfg, deps, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, store, metrics, logger, httpadapter.Options{
		ExportFallbackURL: cfg.ExportFallbackURL,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("settings store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
