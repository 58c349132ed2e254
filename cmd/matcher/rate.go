package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/reputation"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Record a peer rating",
	Long: `Records the rating one collaborator gives another after a project. Category scores
are given as repeated --score category=value flags, with values between 0 and 5, e.g.

  matcher rate --rater u1 --ratee u2 --project-id 42 --score technical=5 --score overall=4`,
	RunE: runRate,
}

var (
	rateRaterID   string
	rateRateeID   string
	rateProjectID string
	rateScores    map[string]string
)

func init() {
	rateCmd.Flags().StringVar(&rateRaterID, "rater", "", "ID of the collaborator giving the rating (required)")
	rateCmd.Flags().StringVar(&rateRateeID, "ratee", "", "ID of the collaborator being rated (required)")
	rateCmd.Flags().StringVarP(&rateProjectID, "project-id", "p", "", "ID of the project the two worked on (required)")
	rateCmd.Flags().StringToStringVar(&rateScores, "score", nil, "Category score as category=value (technical, reliability, communication, initiative, overall)")

	for _, name := range []string{"rater", "ratee", "project-id", "score"} {
		if err := rateCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scores, err := parseScores(rateScores)
	if err != nil {
		return err
	}

	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	rating, err := reputation.Submit(ctx, database, reputation.Submission{
		RaterID:        rateRaterID,
		RateeID:        rateRateeID,
		ProjectID:      rateProjectID,
		CategoryScores: scores,
	})
	if err != nil {
		return err
	}
	logger.Info("rating recorded",
		zap.String("ratee_id", rating.RateeID),
		zap.Float64("raw_rating", rating.RawRating),
	)

	_, cache, closeCache := ratingProvider(database)
	defer closeCache()
	if cache != nil {
		if err := cache.Invalidate(ctx, rating.RateeID); err != nil {
			logger.Warn("stale rating may be served until the cache expires", zap.Error(err))
		}
	}

	return writeJSON("", rating)
}

func parseScores(raw map[string]string) (map[string]float64, error) {
	scores := make(map[string]float64, len(raw))
	for category, value := range raw {
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q for %s: %w", value, category, err)
		}
		scores[strings.ToLower(strings.TrimSpace(category))] = score
	}
	return scores, nil
}
