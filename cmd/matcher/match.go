package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/ingestion"
	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/metrics"
	"github.com/jonathan/collab-matcher/internal/observability"
	"github.com/jonathan/collab-matcher/internal/schemas"
	"github.com/jonathan/collab-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank collaborators for a project",
	Long: `Ranks the candidate pool against a project and prints a MatchResponse JSON.

The project and candidates are read from the database with --project-id, or from
JSON files with --project and --candidates. Database runs use the peer-rating
reputation of each candidate; file runs use the reputation signals in the resumes.`,
	RunE: runMatch,
}

var (
	matchProjectID       string
	matchProjectFile     string
	matchCandidatesFile  string
	matchTop             int
	matchThreshold       float64
	matchOutput          string
	matchSave            bool
	matchMetricsTextfile string
)

func init() {
	flags := matchCmd.Flags()
	flags.StringVarP(&matchProjectID, "project-id", "p", "", "ID of a stored project to match")
	flags.StringVar(&matchProjectFile, "project", "", "Path to a project record JSON file")
	flags.StringVar(&matchCandidatesFile, "candidates", "", "Path to a JSON array of candidate records")
	flags.IntVarP(&matchTop, "top", "k", 0, "Number of results to return (defaults to top_k from config)")
	flags.Float64Var(&matchThreshold, "threshold", 0, "Semantic gate threshold in [-1, 1] (defaults to threshold from config)")
	flags.StringVarP(&matchOutput, "out", "o", "", "Path to output MatchResponse JSON file (defaults to stdout)")
	flags.BoolVar(&matchSave, "save", false, "Store the match run in the database")
	flags.StringVar(&matchMetricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this path")

	matchCmd.MarkFlagsMutuallyExclusive("project-id", "project")
	matchCmd.MarkFlagsMutuallyExclusive("project-id", "candidates")
	matchCmd.MarkFlagsRequiredTogether("project", "candidates")

	rootCmd.AddCommand(matchCmd)
}

// matchInput is what a match run reads before ranking
type matchInput struct {
	project    *ingestion.ProjectRecord
	candidates []ingestion.CandidateRecord
}

func runMatch(cmd *cobra.Command, _ []string) error {
	if matchProjectID == "" && matchProjectFile == "" {
		return fmt.Errorf("either --project-id or --project with --candidates must be provided")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Deadline))
		defer cancel()
	}

	tracer, flush, err := startTracing(ctx)
	if err != nil {
		return err
	}
	defer flush()

	registry := prometheus.NewRegistry()
	runMetrics := metrics.NewMetrics()
	if err := runMetrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := cfg.MatchingOptions()
	opts.Logger = logger
	opts.Metrics = runMetrics
	opts.Tracer = tracer.Tracer("github.com/jonathan/collab-matcher/cmd/matcher")

	var database *db.DB
	if matchProjectID != "" || matchSave {
		database, err = openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	var input matchInput
	if matchProjectID != "" {
		input, err = loadStoredInput(ctx, database)
		if err != nil {
			return err
		}
		provider, _, closeCache := ratingProvider(database)
		defer closeCache()
		opts.Reputation = provider
	} else {
		input, err = loadFileInput()
		if err != nil {
			return err
		}
	}

	parser := ingestion.NewParser(logger)
	var project *types.ProjectProfile
	if input.project != nil {
		project, err = parser.Project(*input.project)
		if err != nil {
			return &matching.RequestError{Kind: matching.KindUnprocessable, Message: "project payload cannot be decoded", Cause: err}
		}
	}
	candidates, skipped := parser.Candidates(input.candidates)
	if skipped > 0 {
		logger.Warn("skipped undecodable candidates", zap.Int("skipped", skipped))
	}

	engine, err := matching.New(opts)
	if err != nil {
		return err
	}

	req := matching.Request{Project: project, Candidates: candidates, TopK: matchTop}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = &matchThreshold
	}

	resp, err := engine.Match(ctx, req)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintProject(project)
		printer.PrintSummary(resp.Summary)
		printer.PrintResults(resp.Results)
	}

	if err := writeMatchResponse(resp); err != nil {
		return err
	}

	if matchSave {
		id, err := database.SaveMatchRun(ctx, resp)
		if err != nil {
			return err
		}
		logger.Info("match run saved", zap.String("run_id", id.String()))
	}

	if matchMetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(matchMetricsTextfile, registry); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}
	return nil
}

func loadStoredInput(ctx context.Context, database *db.DB) (matchInput, error) {
	project, err := database.GetProject(ctx, matchProjectID)
	if err != nil {
		return matchInput{}, err
	}
	if project == nil {
		return matchInput{}, &matching.RequestError{Kind: matching.KindNotFound, Message: fmt.Sprintf("project %s not found", matchProjectID)}
	}

	candidates, err := database.ListResumes(ctx)
	if err != nil {
		return matchInput{}, err
	}
	logger.Debug("loaded candidate pool", zap.Int("candidates", len(candidates)))
	return matchInput{project: project, candidates: candidates}, nil
}

func loadFileInput() (matchInput, error) {
	project, err := ingestion.LoadProjectFile(matchProjectFile)
	if err != nil {
		return matchInput{}, err
	}
	candidates, err := ingestion.LoadCandidateFile(matchCandidatesFile)
	if err != nil {
		return matchInput{}, err
	}
	return matchInput{project: project, candidates: candidates}, nil
}

// writeMatchResponse checks the response against the output schema and writes it.
// A schema mismatch is logged; the response is still written.
func writeMatchResponse(resp *types.MatchResponse) error {
	content, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match response to JSON: %w", err)
	}
	if err := schemas.Validate(schemas.MatchResponse, content); err != nil {
		logger.Warn("match response failed schema validation", zap.Error(err))
	}

	if err := writeOutput(matchOutput, content); err != nil {
		return err
	}
	if matchOutput != "" {
		logger.Info("match response written", zap.String("path", matchOutput))
	}
	return nil
}
