package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/metrics"
	"github.com/jonathan/collab-matcher/internal/server"
	"github.com/jonathan/collab-matcher/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching HTTP API",
	Long: `Starts the HTTP API over the database.

Endpoints:
  POST /match                  rank stored or inline candidates for a project
  GET  /reputation/{id}        smoothed global rating of a candidate
  POST /ratings                record a peer rating (requires a bearer token; needs JWT_SECRET)
  GET  /runs/{id}              a stored match run
  GET  /projects/{id}/runs     recent match runs of a project
  GET  /health                 liveness
  GET  /metrics                Prometheus metrics

Rate limits are read from RATE_LIMIT_* environment variables.`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to port from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tracer, flush, err := startTracing(ctx)
	if err != nil {
		return err
	}
	defer flush()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewMetrics()
	if err := serverMetrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	provider, cache, closeCache := ratingProvider(database)
	defer closeCache()

	opts := cfg.MatchingOptions()
	opts.Logger = logger
	opts.Metrics = serverMetrics
	opts.Tracer = tracer.Tracer("github.com/jonathan/collab-matcher/internal/server")
	opts.Reputation = provider
	engine, err := matching.New(opts)
	if err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}

	deps := server.Deps{
		Store:      database,
		Engine:     engine,
		Reputation: provider,
		Gatherer:   registry,
		Limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:     logger,
		Deadline:   time.Duration(cfg.Deadline),
	}
	if cache != nil {
		deps.Cache = cache
	}
	if cfg.JWTSecret != "" {
		tokens, err := server.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTokenTTL))
		if err != nil {
			return err
		}
		deps.Tokens = tokens
	} else {
		logger.Warn("JWT_SECRET is not set; rating submission over HTTP is disabled")
	}

	srv, err := server.New(server.Config{Port: port}, deps)
	if err != nil {
		return err
	}
	logger.Info("serving matching API", zap.Int("port", port))
	return srv.Start(ctx)
}
