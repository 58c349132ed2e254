// Package server provides the HTTP API for collaborator matching.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/ingestion"
	"github.com/jonathan/collab-matcher/internal/logging"
	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/server/middleware"
	"github.com/jonathan/collab-matcher/internal/server/ratelimit"
	"github.com/jonathan/collab-matcher/internal/types"
)

const tracingServiceName = "collab-matcher-api"

// Store is the persistence the API reads and writes
type Store interface {
	GetProject(ctx context.Context, projectID string) (*ingestion.ProjectRecord, error)
	ListResumes(ctx context.Context) ([]ingestion.CandidateRecord, error)
	SaveMatchRun(ctx context.Context, resp *types.MatchResponse) (uuid.UUID, error)
	GetMatchRun(ctx context.Context, id uuid.UUID) (*db.MatchRun, error)
	ListMatchRuns(ctx context.Context, projectID string, limit int) ([]db.MatchRun, error)
	reputation.Recorder
}

// Invalidator drops a cached rating
type Invalidator interface {
	Invalidate(ctx context.Context, candidateID string) error
}

// Deps are the collaborators a Server is built from. Store and Engine are required.
type Deps struct {
	Store      Store
	Engine     *matching.Engine
	Reputation reputation.Provider
	// Cache, when set, is invalidated for the ratee after a rating is recorded
	Cache Invalidator
	// Tokens, when set, enables POST /ratings for authenticated collaborators
	Tokens   middleware.TokenValidator
	Gatherer prometheus.Gatherer
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger
	// TracerProvider receives request spans; nil uses the global provider
	TracerProvider trace.TracerProvider
	// Deadline bounds each match request; 0 leaves the request context in charge
	Deadline time.Duration
}

// Config holds server configuration
type Config struct {
	Port int
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	deps       Deps
	parser     *ingestion.Parser
	logger     *zap.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Engine == nil {
		return nil, fmt.Errorf("server requires a store and a matching engine")
	}
	if deps.Reputation == nil {
		deps.Reputation = reputation.StaticProvider{}
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}

	s := &Server{
		deps:   deps,
		logger: logging.OrNop(deps.Logger),
	}
	s.parser = ingestion.NewParser(s.logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with logging and rate limiting applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("GET /reputation/{id}", s.handleReputation)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /projects/{id}/runs", s.handleListRuns)

	if s.deps.Tokens != nil {
		mux.Handle("POST /ratings", middleware.AuthMiddleware(s.deps.Tokens)(http.HandlerFunc(s.handleRating)))
	} else {
		mux.HandleFunc("POST /ratings", func(w http.ResponseWriter, _ *http.Request) {
			s.errorResponse(w, http.StatusNotImplemented, "rating submission is disabled; set JWT_SECRET to enable it")
		})
	}

	if s.deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	tracing := middleware.Tracing(tracingServiceName, s.deps.TracerProvider)
	return tracing(s.withRateLimit(s.withLogging(mux)))
}

// Start serves requests until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.deps.Limiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		}
		if traceID := middleware.TraceID(r); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		s.logger.Info("request completed", fields...)
	})
}

// withRateLimit rejects clients over their limit with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.deps.Limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !allowed {
			retryAfter := int(info.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID extracts the client identifier (IP address) from RemoteAddr
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor writes err with the status HTTPStatus assigns it. Internal errors are logged and masked.
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
