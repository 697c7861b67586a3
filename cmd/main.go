/**
 * @description
 * This is the main entry point for the waitlist-service.
 * It loads configuration, opens the configured database, applies migrations,
 * connects the event publisher, wires the service and HTTP router, and serves
 * until an interrupt or termination signal is received.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files during local development.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/duckcross/waitlist-service/internal/api"
	"github.com/duckcross/waitlist-service/internal/app"
	"github.com/duckcross/waitlist-service/internal/config"
	"github.com/duckcross/waitlist-service/internal/store"
	"github.com/duckcross/waitlist-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	repository, closeDB, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Error("unable to initialise storage", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer closeDB()
	logger.Info("database connection established", "driver", cfg.DatabaseDriver)

	publisher := rabbitmq.NewPublisher(cfg.RabbitMQURL)
	defer publisher.Close()

	// Initialize application layers
	service := app.NewService(repository, publisher, app.Options{
		PrivacyPolicyVersion: cfg.PrivacyPolicyVersion,
		Exchange:             cfg.SubscriberExchange,
	}, logger)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		AdminJWTSecret: cfg.AdminJWTSecret,
	})

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

// openRepository connects to the configured database and applies migrations
// when enabled. The returned func releases the connection.
func openRepository(ctx context.Context, cfg config.Config) (app.Repository, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := store.NewSQLiteDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.RunMigrations {
			if err := store.MigrateSQLite(db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return store.NewSQLiteRepository(db), func() { db.Close() }, nil
	default:
		pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.RunMigrations {
			if err := store.MigratePostgres(pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return store.NewPostgresRepository(pool), pool.Close, nil
	}
}
