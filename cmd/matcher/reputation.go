package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/collab-matcher/internal/observability"
	"github.com/jonathan/collab-matcher/internal/reputation"
)

var reputationCmd = &cobra.Command{
	Use:   "reputation",
	Short: "Show a candidate's smoothed peer rating",
	Long:  "Computes the Bayesian-smoothed global rating of a candidate from the stored peer ratings. Candidates without ratings get the prior.",
	RunE:  runReputation,
}

var reputationCandidateID string

func init() {
	reputationCmd.Flags().StringVarP(&reputationCandidateID, "candidate-id", "c", "", "ID of the candidate (required)")

	if err := reputationCmd.MarkFlagRequired("candidate-id"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate-id flag as required: %v", err))
	}

	rootCmd.AddCommand(reputationCmd)
}

func runReputation(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	provider, _, closeCache := ratingProvider(database)
	defer closeCache()

	rating, err := provider.GlobalRating(ctx, reputationCandidateID)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintRating(reputationCandidateID, rating)
	}
	return writeJSON("", struct {
		CandidateID string `json:"user_id"`
		reputation.Rating
	}{CandidateID: reputationCandidateID, Rating: rating})
}
