package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/matching"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or show stored match runs",
	Long:  "Lists the most recent match runs saved for a project with --project-id, or prints one stored MatchResponse with --run-id.",
	RunE:  runRuns,
}

var (
	runsProjectID string
	runsRunID     string
	runsLimit     int
)

func init() {
	runsCmd.Flags().StringVarP(&runsProjectID, "project-id", "p", "", "ID of the project whose runs to list")
	runsCmd.Flags().StringVar(&runsRunID, "run-id", "", "ID of a stored run to print")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "Maximum number of runs to list")

	runsCmd.MarkFlagsMutuallyExclusive("project-id", "run-id")
	runsCmd.MarkFlagsOneRequired("project-id", "run-id")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	var id uuid.UUID
	if runsRunID != "" {
		parsed, err := uuid.Parse(runsRunID)
		if err != nil {
			return fmt.Errorf("invalid run id: %w", err)
		}
		id = parsed
	}
	if runsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if runsRunID != "" {
		run, err := database.GetMatchRun(ctx, id)
		if err != nil {
			return err
		}
		if run == nil {
			return &matching.RequestError{Kind: matching.KindNotFound, Message: fmt.Sprintf("match run %s not found", id)}
		}
		return writeJSON("", run)
	}

	runs, err := database.ListMatchRuns(ctx, runsProjectID, runsLimit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []db.MatchRun{}
	}
	return writeJSON("", runs)
}
