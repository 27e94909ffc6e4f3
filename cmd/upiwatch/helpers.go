package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hrejuh/upiwatch/internal/engine"
	"github.com/hrejuh/upiwatch/internal/parser"
	"github.com/hrejuh/upiwatch/internal/storage"
	"github.com/hrejuh/upiwatch/internal/template"
	"github.com/hrejuh/upiwatch/internal/validator"
)

// initStorage opens the database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/upiwatch/upiwatch.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initVerifier wires the full pipeline: registry, parser, validator, engine.
func initVerifier(ctx context.Context, store *storage.SQLiteStorage) (*engine.Verifier, error) {
	registry, err := template.Load(ctx, store)
	if err != nil {
		return nil, err
	}

	cfg := validatorConfig()
	p := parser.New(registry, cfg.ReceiverToken)
	v := validator.New(cfg)

	return engine.New(store, p, v), nil
}

// validatorConfig reads the merchant constraints from viper, falling back
// to the reference defaults.
func validatorConfig() validator.Config {
	cfg := validator.DefaultConfig()
	if token := viper.GetString("merchant.receiver_token"); token != "" {
		cfg.ReceiverToken = token
	}
	if min := viper.GetFloat64("merchant.min_amount"); min > 0 {
		cfg.MinAmount = min
	}
	if max := viper.GetFloat64("merchant.max_amount"); max > 0 {
		cfg.MaxAmount = max
	}
	if window := viper.GetDuration("merchant.freshness_window"); window > 0 {
		cfg.FreshnessWindow = window
	}
	return cfg
}

// pollInterval reads the bridge poll settings from viper.
func pollInterval() (time.Duration, int) {
	interval := viper.GetDuration("watch.interval")
	if interval <= 0 {
		interval = 2 * time.Second
	}
	attempts := viper.GetInt("watch.max_attempts")
	if attempts <= 0 {
		attempts = 150
	}
	return interval, attempts
}

// expandPath expands ~ and environment variables in a file path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
