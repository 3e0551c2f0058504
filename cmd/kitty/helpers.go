package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kitty/internal/api"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/config"
	"github.com/Veraticus/kitty/internal/metrics"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/Veraticus/kitty/internal/source"
	"github.com/Veraticus/kitty/internal/storage"
	"github.com/spf13/viper"
)

// env is what a command needs to talk to the backend.
type env struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	resolver *resolver.Resolver
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// loadConfig resolves the typed configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the session database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openEnv builds the resolver. Signed-in commands attach the stored session
// token to every request; anonymous ones (registration and OTP) do not.
func openEnv(ctx context.Context, signedIn bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		metrics: metrics.New(),
		logger:  slog.Default(),
	}

	var tokens service.TokenStore
	if signedIn {
		store, err := initStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		e.store = store
		tokens = store

		// Report a missing or expired session before any request is tried.
		if _, err := store.Token(ctx); err != nil {
			e.Close()
			return nil, common.NewUserError("No usable session", err)
		}
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
	}, tokens, e.logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.resolver = resolver.New(client,
		resolver.WithLogger(e.logger),
		resolver.WithMetrics(e.metrics))
	return e, nil
}

func (e *env) deps() source.Deps {
	return source.Deps{
		Resolver: e.resolver,
		Logger:   e.logger,
		Metrics:  e.metrics,
	}
}

// Close releases the session database.
func (e *env) Close() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close storage", "error", err)
	}
}
