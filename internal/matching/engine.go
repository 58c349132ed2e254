// Package matching provides the orchestration for ranking candidates against a project.
package matching

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/collab-matcher/internal/logging"
	"github.com/jonathan/collab-matcher/internal/metrics"
	"github.com/jonathan/collab-matcher/internal/ranking"
	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/types"
)

const tracerName = "github.com/jonathan/collab-matcher/internal/matching"

var validate = validator.New()

// Request is a single match request
type Request struct {
	Project    *types.ProjectProfile
	Candidates []types.CandidateProfile
	// TopK bounds the result size; 0 uses the engine default
	TopK int `validate:"gte=0"`
	// Threshold overrides the engine's semantic gate threshold when set
	Threshold *float64 `validate:"omitempty,gte=-1,lte=1"`
}

// Engine runs the gate, score and rank phases. It holds no per-request state
// and is safe for concurrent use.
type Engine struct {
	scorer      *ranking.Scorer
	gate        ranking.Gate
	defaultTopK int
	workers     int
	reputation  *reputation.FallbackProvider
	logger      *zap.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// New validates the options and builds an engine
func New(opts Options) (*Engine, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid matching options: %w", err)
	}

	weights := opts.Weights
	if weights.IsZero() {
		weights = ranking.DefaultWeights()
	}
	scorer, err := ranking.NewScorer(weights)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	threshold := ranking.DefaultSemanticThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	engine := &Engine{
		scorer:      scorer,
		gate:        ranking.Gate{Threshold: threshold, MaxPool: opts.MaxPool},
		defaultTopK: opts.DefaultTopK,
		workers:     workers,
		logger:      logging.OrNop(opts.Logger),
		metrics:     opts.Metrics,
		tracer:      tracer,
	}
	if opts.Reputation != nil {
		engine.reputation = reputation.WithFallback(opts.Reputation, opts.ReputationTimeout)
	}
	return engine, nil
}

// Weights returns the weights the engine scores with
func (e *Engine) Weights() ranking.WeightVector {
	return e.scorer.Weights()
}

// startSpan starts a child span and returns a function that ends it, recording err if any
func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := e.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (e *Engine) validateRequest(req Request) error {
	if req.Project == nil {
		return &RequestError{Kind: KindNotFound, Message: "project not found"}
	}
	if !req.Project.HasEmbedding() {
		return &RequestError{Kind: KindUnprocessable, Message: fmt.Sprintf("project %s has no embedding", req.Project.ID)}
	}
	if ranking.IsZeroVector(req.Project.Embedding) {
		return &RequestError{Kind: KindUnprocessable, Message: fmt.Sprintf("project %s has a zero embedding", req.Project.ID)}
	}
	if err := validate.Struct(req); err != nil {
		return &RequestError{Kind: KindInvalid, Message: "invalid match request", Cause: err}
	}
	return nil
}

// Match ranks the request's candidates against its project.
//
// Candidates without an embedding are skipped and counted. A dimension mismatch
// fails the whole request. When ctx expires during scoring, the candidates
// scored so far are ranked and the summary is marked partial.
func (e *Engine) Match(ctx context.Context, req Request) (resp *types.MatchResponse, err error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, endSpan := e.startSpan(ctx, "matching.Match",
		attribute.String("match.request_id", requestID),
		attribute.Int("match.pool_size", len(req.Candidates)),
	)
	outcome := metrics.OutcomeError
	defer func() {
		endSpan(err)
		e.metrics.ObserveRun(outcome, time.Since(start))
	}()

	if err := e.validateRequest(req); err != nil {
		e.logger.Warn("match request rejected", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	project := req.Project
	topK := req.TopK
	if topK == 0 {
		topK = e.defaultTopK
	}
	gate := e.gate
	if req.Threshold != nil {
		gate.Threshold = *req.Threshold
	}

	logger := e.logger.With(
		zap.String("request_id", requestID),
		zap.String("project_id", project.ID),
	)

	summary := types.MatchSummary{
		RequestID: requestID,
		ProjectID: project.ID,
		PoolSize:  len(req.Candidates),
		Threshold: gate.Threshold,
	}
	e.metrics.AddCandidates(metrics.StageReceived, len(req.Candidates))

	if len(req.Candidates) == 0 {
		logger.Info("empty candidate pool")
		outcome = metrics.OutcomeSuccess
		return &types.MatchResponse{Summary: summary, Results: []types.MatchResult{}}, nil
	}

	// Phase 1: semantic gate
	gateOutcome, err := e.runGate(ctx, logger, gate, project, req.Candidates, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic gate failed: %w", err)
	}
	summary.MissingEmbeddings = gateOutcome.MissingEmbeddings
	summary.ZeroEmbeddings = gateOutcome.ZeroEmbeddings
	summary.PassedGate = gateOutcome.Passed
	summary.FallbackUsed = gateOutcome.FallbackUsed

	// Phase 2: score and rank
	results, partial := e.scoreAll(ctx, logger, project, req.Candidates, gateOutcome.Selected)
	summary.Scored = len(results)
	summary.Partial = partial

	_, endRank := e.startSpan(ctx, "matching.rank")
	ranking.Rank(results)
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	endRank(nil)
	summary.Returned = len(results)

	logger.Info("match completed",
		zap.Int("pool_size", summary.PoolSize),
		zap.Int("passed_gate", summary.PassedGate),
		zap.Int("scored", summary.Scored),
		zap.Int("returned", summary.Returned),
		zap.Bool("fallback_used", summary.FallbackUsed),
		zap.Bool("partial", summary.Partial),
		zap.Duration("elapsed", time.Since(start)),
	)

	outcome = metrics.OutcomeSuccess
	if partial {
		outcome = metrics.OutcomePartial
	}
	return &types.MatchResponse{Summary: summary, Results: results}, nil
}

func (e *Engine) runGate(
	ctx context.Context,
	logger *zap.Logger,
	gate ranking.Gate,
	project *types.ProjectProfile,
	candidates []types.CandidateProfile,
	topK int,
) (ranking.GateOutcome, error) {
	_, endSpan := e.startSpan(ctx, "matching.gate", attribute.Float64("gate.threshold", gate.Threshold))

	logger.Debug("gate phase started",
		zap.Int("candidates", len(candidates)),
		zap.Float64("threshold", gate.Threshold),
		zap.Int("embedding_dim", len(project.Embedding)),
	)

	inputs := make([]ranking.GateInput, len(candidates))
	for i := range candidates {
		inputs[i] = ranking.GateInput{ID: candidates[i].ID, Embedding: candidates[i].Embedding}
	}

	outcome, err := gate.Apply(project.Embedding, inputs, topK)
	endSpan(err)
	if err != nil {
		return ranking.GateOutcome{}, err
	}

	e.metrics.AddCandidates(metrics.StageMissingEmbedding, outcome.MissingEmbeddings)
	e.metrics.AddCandidates(metrics.StagePassedGate, outcome.Passed)

	if outcome.FallbackUsed {
		e.metrics.IncGateFallback()
		logger.Warn("no candidate cleared the semantic gate, using top candidates by similarity",
			zap.Float64("threshold", gate.Threshold),
			zap.Int("selected", len(outcome.Selected)),
		)
	}

	logger.Debug("gate phase finished",
		zap.Int("passed", outcome.Passed),
		zap.Int("selected", len(outcome.Selected)),
		zap.Int("missing_embeddings", outcome.MissingEmbeddings),
		zap.Int("zero_embeddings", outcome.ZeroEmbeddings),
	)
	return outcome, nil
}

// scoreAll scores the selected candidates in parallel. Each worker writes only its own
// slot; the returned slice keeps gate order so the final sort alone decides ranking.
func (e *Engine) scoreAll(
	ctx context.Context,
	logger *zap.Logger,
	project *types.ProjectProfile,
	candidates []types.CandidateProfile,
	selected []ranking.GateEntry,
) ([]types.MatchResult, bool) {
	ctx, endSpan := e.startSpan(ctx, "matching.score", attribute.Int("score.candidates", len(selected)))
	defer endSpan(nil)

	start := time.Now()
	slots := make([]types.MatchResult, len(selected))
	done := make([]bool, len(selected))
	var reputationFallbacks atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, entry := range selected {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			candidate := candidates[entry.Index]
			if e.reputation != nil {
				rating, ok := e.reputation.Lookup(ctx, candidate.ID)
				if !ok {
					reputationFallbacks.Add(1)
				}
				candidate.Reputation = types.Reputation{
					AverageRating:     rating.GlobalRating,
					CompletedProjects: rating.RatingsCount,
				}
			}
			slots[i] = e.scoreCandidate(project, &candidate, entry.Similarity)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	results := make([]types.MatchResult, 0, len(selected))
	for i := range slots {
		if done[i] {
			results = append(results, slots[i])
		}
	}
	partial := len(results) < len(selected)

	e.metrics.AddReputationFallbacks(int(reputationFallbacks.Load()))
	e.metrics.AddCandidates(metrics.StageScored, len(results))

	if partial {
		logger.Warn("scoring stopped early, ranking partial results",
			zap.Int("scored", len(results)),
			zap.Int("selected", len(selected)),
			zap.Error(ctx.Err()),
		)
	}
	logger.Debug("scoring batch completed",
		zap.Int("scored", len(results)),
		zap.Int64("reputation_fallbacks", reputationFallbacks.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, partial
}

func (e *Engine) scoreCandidate(project *types.ProjectProfile, candidate *types.CandidateProfile, similarity float64) types.MatchResult {
	signals, matched := ranking.ComputeSignals(project, candidate, similarity)
	final, contributions := e.scorer.Score(signals)
	if matched == nil {
		matched = []string{}
	}

	return types.MatchResult{
		CandidateID:   candidate.ID,
		FinalScore:    final,
		Scores:        signals,
		Contributions: contributions,
		RawSimilarity: similarity,
		MatchedSkills: matched,
		Notes:         ranking.GenerateNotes(signals, matched, candidate.Reputation.CompletedProjects),
		Profile: types.DisplayProfile{
			Name:         candidate.DisplayName(),
			Year:         candidate.Year,
			Availability: candidate.Availability,
		},
	}
}
