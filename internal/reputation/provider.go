package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks a rating lookup that could not be served
var ErrUnavailable = errors.New("reputation unavailable")

// Provider resolves the global rating for a candidate
type Provider interface {
	GlobalRating(ctx context.Context, candidateID string) (Rating, error)
}

// Source returns the sum and count of adjusted ratings received by a candidate
type Source interface {
	SumAdjustedRatings(ctx context.Context, candidateID string) (float64, int, error)
}

// Service computes Bayesian-smoothed ratings from a Source
type Service struct {
	source Source
}

// NewService creates a Service backed by source
func NewService(source Source) *Service {
	return &Service{source: source}
}

// GlobalRating implements Provider
func (s *Service) GlobalRating(ctx context.Context, candidateID string) (Rating, error) {
	sum, count, err := s.source.SumAdjustedRatings(ctx, candidateID)
	if err != nil {
		return Rating{}, fmt.Errorf("%w: failed to load ratings for %s: %w", ErrUnavailable, candidateID, err)
	}
	return Smooth(sum, count), nil
}

// StaticProvider serves fixed ratings, e.g. from an offline export.
// Unknown candidates get the neutral rating.
type StaticProvider map[string]Rating

// GlobalRating implements Provider
func (p StaticProvider) GlobalRating(_ context.Context, candidateID string) (Rating, error) {
	if r, ok := p[candidateID]; ok {
		return r, nil
	}
	return Neutral(), nil
}

// FallbackProvider bounds every lookup by a timeout and substitutes the
// neutral rating when the inner provider fails.
type FallbackProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithFallback wraps p. A non-positive timeout leaves the caller's deadline in charge.
func WithFallback(p Provider, timeout time.Duration) *FallbackProvider {
	return &FallbackProvider{inner: p, timeout: timeout}
}

// Lookup returns the rating and whether the inner provider actually served it
func (f *FallbackProvider) Lookup(ctx context.Context, candidateID string) (Rating, bool) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	r, err := f.inner.GlobalRating(ctx, candidateID)
	if err != nil {
		return Neutral(), false
	}
	return r, true
}

// GlobalRating implements Provider. It never returns an error.
func (f *FallbackProvider) GlobalRating(ctx context.Context, candidateID string) (Rating, error) {
	r, _ := f.Lookup(ctx, candidateID)
	return r, nil
}
