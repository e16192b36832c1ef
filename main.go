package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"woodcraft/internal/app"
	"woodcraft/internal/config"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"
	"woodcraft/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	initLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func initLogger(cfg config.Config) {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	// A store that cannot be reached at startup is fatal.
	store, err := repositories.OpenStore(ctx, repositories.StoreConfig{
		Driver:        cfg.StoreDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		return err
	}
	slog.Info("store opened", "driver", cfg.StoreDriver)

	// --- RabbitMQ (optional) ---
	var publisher services.ActivityPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.ActivityQueue})
		if err != nil {
			return errors.Join(err, store.Close(context.Background()))
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				slog.Warn("failed to close RabbitMQ client", "err", err)
			}
		}()
		publisher = mqClient

		err = mqClient.ConsumeActivity(func(evt rabbitmq.ActivityEvent) error {
			slog.Info("activity", "type", evt.Type, "description", evt.Description, "user", evt.UserID)
			return nil
		})
		if err != nil {
			slog.Warn("activity consumer not started", "err", err)
		}
	}

	application := app.New(app.Options{
		Store:          store,
		Publisher:      publisher,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.JWTTTL,
		SecureCookies:  cfg.CookieSecure,
		AllowedOrigins: cfg.Origins(),
		AccessLog:      true,
	})

	// --- HTTP server ---
	listenErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.AppPort)
		listenErr <- application.Listen(cfg.AppPort)
	}()

	select {
	case err = <-listenErr:
		err = fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if shutdownErr := application.ShutdownWithContext(shutdownCtx); shutdownErr != nil {
		slog.Error("error during server shutdown", "err", shutdownErr)
	}
	if closeErr := store.Close(shutdownCtx); closeErr != nil {
		slog.Error("error closing store", "err", closeErr)
	}
	if err == nil {
		slog.Info("server gracefully stopped")
	}
	return err
}
