package ranking

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two embeddings have different lengths
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DimensionError reports which candidate carried a mismatched embedding
type DimensionError struct {
	CandidateID string
	Expected    int
	Actual      int
}

func (e *DimensionError) Error() string {
	if e.CandidateID != "" {
		return fmt.Sprintf("%v: candidate %s has %d dimensions, project has %d",
			ErrDimensionMismatch, e.CandidateID, e.Actual, e.Expected)
	}
	return fmt.Sprintf("%v: got %d dimensions, expected %d", ErrDimensionMismatch, e.Actual, e.Expected)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// Norm returns the euclidean norm of a vector
func Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IsZeroVector reports whether the vector is empty or has zero norm
func IsZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// CosineSimilarity computes dot(a,b) / (|a|·|b|).
// A zero vector on either side yields 0. Differing lengths are an error.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Expected: len(a), Actual: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors just past 1
	return clamp(sim, -1, 1), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}
