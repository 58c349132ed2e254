// Package reputation computes smoothed peer ratings for candidates and exposes them to the matcher.
package reputation

import "math"

// Bayesian shrinkage parameters
const (
	// PriorMean is the rating assumed for a candidate with no history
	PriorMean = 3.5
	// PriorWeight is how many pseudo-ratings the prior counts for
	PriorWeight = 3
	// MaxRating is the top of the rating scale
	MaxRating = 5.0
)

// CategoryWeights weigh the per-category scores of a single peer rating
var CategoryWeights = map[string]float64{
	"technical":     0.30,
	"reliability":   0.25,
	"communication": 0.20,
	"initiative":    0.15,
	"overall":       0.10,
}

// Rating is the global rating of a candidate
type Rating struct {
	GlobalRating float64 `json:"global_rating"`
	RatingsCount int     `json:"ratings_count"`
}

// Neutral returns the rating used when nothing is known about a candidate
func Neutral() Rating {
	return Rating{GlobalRating: PriorMean, RatingsCount: 0}
}

// RawRating combines category scores into one rating.
// Categories outside CategoryWeights weigh nothing.
func RawRating(categoryScores map[string]float64) float64 {
	total := 0.0
	for category, score := range categoryScores {
		total += CategoryWeights[category] * score
	}
	return round3(total)
}

// Smooth shrinks the average of count adjusted ratings (summing to sum) toward PriorMean
func Smooth(sum float64, count int) Rating {
	if count <= 0 {
		return Neutral()
	}
	global := (PriorMean*PriorWeight + sum) / float64(PriorWeight+count)
	return Rating{GlobalRating: round3(global), RatingsCount: count}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
