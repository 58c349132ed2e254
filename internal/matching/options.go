package matching

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/metrics"
	"github.com/jonathan/collab-matcher/internal/ranking"
	"github.com/jonathan/collab-matcher/internal/reputation"
)

// DefaultTopK is the result size used when neither the request nor the options set one
const DefaultTopK = 5

// DefaultReputationTimeout bounds a single reputation lookup
const DefaultReputationTimeout = 2 * time.Second

// Options configures an Engine. They are read once by New and never mutated afterwards.
type Options struct {
	Weights ranking.WeightVector `validate:"-"`
	// Threshold is the default semantic gate threshold; nil uses ranking.DefaultSemanticThreshold
	Threshold *float64 `validate:"omitempty,gte=-1,lte=1"`
	// MaxPool caps how many gated candidates are scored; 0 means no cap
	MaxPool int `validate:"gte=0"`
	// DefaultTopK is used when a request carries no result size; 0 returns everything
	DefaultTopK int `validate:"gte=0"`
	// Workers bounds scoring parallelism; 0 uses GOMAXPROCS
	Workers int `validate:"gte=0"`

	// Reputation, when set, replaces the profile reputation with the collaborator's rating
	Reputation        reputation.Provider `validate:"-"`
	ReputationTimeout time.Duration       `validate:"gte=0"`

	Logger  *zap.Logger      `validate:"-"`
	Metrics *metrics.Metrics `validate:"-"`
	Tracer  trace.Tracer     `validate:"-"`
}

// DefaultOptions returns options with the production weights and gate threshold
func DefaultOptions() Options {
	threshold := ranking.DefaultSemanticThreshold
	return Options{
		Weights:           ranking.DefaultWeights(),
		Threshold:         &threshold,
		DefaultTopK:       DefaultTopK,
		ReputationTimeout: DefaultReputationTimeout,
	}
}
