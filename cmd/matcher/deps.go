package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/tracing"
)

// openDB connects to the configured database
func openDB(ctx context.Context) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// ratingProvider builds the reputation provider over the database, with a Redis
// cache in front when REDIS_ADDR is configured. The returned cache is nil without Redis.
func ratingProvider(database *db.DB) (reputation.Provider, *reputation.CachedProvider, func()) {
	service := reputation.NewService(database)
	if cfg.RedisAddr == "" {
		return service, nil, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cache := reputation.NewCachedProvider(client, service, time.Duration(cfg.ReputationCacheTTL))
	logger.Debug("reputation cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	return cache, cache, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

// startTracing starts span export when a collector is configured. The returned
// function flushes pending spans.
func startTracing(ctx context.Context) (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(ctx, tracing.Config{
		Endpoint:     cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		Insecure:     cfg.TracingInsecure,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start tracing: %w", err)
	}
	return provider, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}, nil
}

// writeJSON marshals v with indentation to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}
	return writeOutput(path, content)
}

func writeOutput(path string, content []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, string(content))
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
