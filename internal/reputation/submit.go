package reputation

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Submission is one peer rating given after a project completes
type Submission struct {
	RaterID        string             `json:"rater_id" validate:"required"`
	RateeID        string             `json:"ratee_id" validate:"required,nefield=RaterID"`
	ProjectID      string             `json:"project_id" validate:"required"`
	CategoryScores map[string]float64 `json:"category_scores" validate:"required,min=1,dive,keys,oneof=technical reliability communication initiative overall,endkeys,gte=0,lte=5"`
}

// PeerRating is a stored submission with its combined ratings
type PeerRating struct {
	Submission
	RawRating      float64 `json:"raw_rating"`
	AdjustedRating float64 `json:"adjusted_rating"`
}

// Recorder persists peer ratings
type Recorder interface {
	InsertRating(ctx context.Context, rating PeerRating) error
}

// Submit validates a submission, combines its category scores and records it.
// The adjusted rating equals the raw rating; rater reliability is not modelled.
func Submit(ctx context.Context, recorder Recorder, s Submission) (PeerRating, error) {
	if err := validate.Struct(s); err != nil {
		return PeerRating{}, fmt.Errorf("invalid rating submission: %w", err)
	}

	raw := RawRating(s.CategoryScores)
	rating := PeerRating{Submission: s, RawRating: raw, AdjustedRating: raw}
	if err := recorder.InsertRating(ctx, rating); err != nil {
		return PeerRating{}, fmt.Errorf("failed to record rating from %s for %s: %w", s.RaterID, s.RateeID, err)
	}
	return rating, nil
}
