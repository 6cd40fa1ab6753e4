package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transpopilot/backend/internal/config"
	"github.com/transpopilot/backend/internal/logger"
	"github.com/transpopilot/backend/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logger.Error("database initialisation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialised")
}

func run(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not create database pool: %w", err)
	}
	defer pool.Close()

	repo := postgres.NewPostgresRepository(pool)
	if err := repo.Health(ctx); err != nil {
		return err
	}

	return repo.Migrate(ctx, func(step string) {
		logger.Info("applied schema step", "step", step)
	})
}
