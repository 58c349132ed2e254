package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/collab-matcher/internal/reputation"
)

// InsertRating stores a peer rating. A repeated rating for the same rater, ratee and project replaces the earlier one.
func (db *DB) InsertRating(ctx context.Context, rating reputation.PeerRating) error {
	scores, err := json.Marshal(rating.CategoryScores)
	if err != nil {
		return fmt.Errorf("failed to marshal category scores: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO ratings (rater_id, ratee_id, project_id, category_scores, raw_rating, adjusted_rating)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (rater_id, ratee_id, project_id) DO UPDATE
		 SET category_scores = $4, raw_rating = $5, adjusted_rating = $6, created_at = NOW()`,
		rating.RaterID, rating.RateeID, rating.ProjectID, scores, rating.RawRating, rating.AdjustedRating,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rating for %s: %w", rating.RateeID, err)
	}
	return nil
}

// SumAdjustedRatings returns the sum and count of adjusted ratings received by a candidate
func (db *DB) SumAdjustedRatings(ctx context.Context, candidateID string) (float64, int, error) {
	var sum float64
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(adjusted_rating), 0), COUNT(*) FROM ratings WHERE ratee_id = $1`,
		candidateID,
	).Scan(&sum, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum ratings for %s: %w", candidateID, err)
	}
	return sum, count, nil
}
