// Package ranking provides the scoring and ranking functions used to match candidates to projects.
package ranking

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.0
const WeightTolerance = 1e-9

// WeightVector holds the composite scorer weight per signal.
// Weights must be non-negative and sum to 1.0.
type WeightVector struct {
	Semantic     float64 `json:"semantic"`
	Skill        float64 `json:"skill"`
	Experience   float64 `json:"experience"`
	Year         float64 `json:"year"`
	Reputation   float64 `json:"reputation"`
	Availability float64 `json:"availability"`
}

// DefaultWeights returns the production weight vector
func DefaultWeights() WeightVector {
	return WeightVector{
		Semantic:     0.20,
		Skill:        0.30,
		Experience:   0.20,
		Year:         0.12,
		Reputation:   0.10,
		Availability: 0.08,
	}
}

// Sum returns the total of all weights
func (w WeightVector) Sum() float64 {
	return w.Semantic + w.Skill + w.Experience + w.Year + w.Reputation + w.Availability
}

// IsZero reports whether no weight has been set
func (w WeightVector) IsZero() bool {
	return w == WeightVector{}
}

// Validate checks that no weight is negative and that the weights sum to 1.0
func (w WeightVector) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"semantic", w.Semantic},
		{"skill", w.Skill},
		{"experience", w.Experience},
		{"year", w.Year},
		{"reputation", w.Reputation},
		{"availability", w.Availability},
	}
	for _, n := range named {
		if n.value < 0 || math.IsNaN(n.value) {
			return fmt.Errorf("invalid weight %s: %v", n.name, n.value)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("weights sum to %.12f, must sum to 1.0", sum)
	}
	return nil
}
