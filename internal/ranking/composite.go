package ranking

import (
	"fmt"

	"github.com/jonathan/collab-matcher/internal/types"
)

// Scorer combines signal scores with a fixed weight vector.
// A Scorer is read-only after construction and safe for concurrent use.
type Scorer struct {
	weights WeightVector
}

// NewScorer validates the weights once and returns a scorer bound to them
func NewScorer(weights WeightVector) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight vector: %w", err)
	}
	return &Scorer{weights: weights}, nil
}

// Weights returns a copy of the scorer's weights
func (s *Scorer) Weights() WeightVector {
	return s.weights
}

// Score returns the composite score and the per-signal weighted contributions.
// Signals are clamped to [0, 1] and the final score is capped at 1.0.
func (s *Scorer) Score(signals types.SignalScores) (float64, types.WeightedContributions) {
	w := s.weights
	contributions := types.WeightedContributions{
		Semantic:     w.Semantic * clampUnit(signals.Semantic),
		Skill:        w.Skill * clampUnit(signals.Skill),
		Experience:   w.Experience * clampUnit(signals.Experience),
		Year:         w.Year * clampUnit(signals.Year),
		Reputation:   w.Reputation * clampUnit(signals.Reputation),
		Availability: w.Availability * clampUnit(signals.Availability),
	}

	return clampUnit(contributions.Total()), contributions
}
