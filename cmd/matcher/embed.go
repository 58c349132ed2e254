package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/embedding"
	"github.com/jonathan/collab-matcher/internal/ingestion"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for a project or candidates",
	Long: `Builds the semantic text of a project record (--project) or of candidate records
(--candidates), embeds it with the Gemini embedding model and prints the records with
their embeddings. With --save the records are stored for later database match runs.
With --text-only the semantic text is printed and no embedding is requested.`,
	RunE: runEmbed,
}

var (
	embedProjectFile    string
	embedCandidatesFile string
	embedOutput         string
	embedSave           bool
	embedTextOnly       bool
	embedAPIKey         string
)

func init() {
	flags := embedCmd.Flags()
	flags.StringVar(&embedProjectFile, "project", "", "Path to a project record JSON file")
	flags.StringVar(&embedCandidatesFile, "candidates", "", "Path to a JSON array of candidate records")
	flags.StringVarP(&embedOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	flags.BoolVar(&embedSave, "save", false, "Store the embedded records in the database")
	flags.BoolVar(&embedTextOnly, "text-only", false, "Print the semantic text without embedding it")
	flags.StringVar(&embedAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")

	embedCmd.MarkFlagsMutuallyExclusive("project", "candidates")
	embedCmd.MarkFlagsOneRequired("project", "candidates")
	embedCmd.MarkFlagsMutuallyExclusive("text-only", "save")

	rootCmd.AddCommand(embedCmd)
}

// embeddedText pairs a record ID with its semantic text
type embeddedText struct {
	ID   string `json:"id"`
	Text string `json:"semantic_text"`
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	parser := ingestion.NewParser(logger)
	var projects []ingestion.ProjectRecord
	var candidates []ingestion.CandidateRecord
	var texts []embeddedText

	if embedProjectFile != "" {
		rec, err := ingestion.LoadProjectFile(embedProjectFile)
		if err != nil {
			return err
		}
		project, err := parser.Project(*rec)
		if err != nil {
			return err
		}
		projects = append(projects, *rec)
		texts = append(texts, embeddedText{ID: project.ID, Text: embedding.BuildProjectText(project)})
	} else {
		records, err := ingestion.LoadCandidateFile(embedCandidatesFile)
		if err != nil {
			return err
		}
		for _, rec := range records {
			candidate, err := parser.Candidate(rec)
			if err != nil {
				logger.Warn("skipping candidate", zap.String("user_id", rec.UserID), zap.Error(err))
				continue
			}
			rec.UserID = candidate.ID
			candidates = append(candidates, rec)
			texts = append(texts, embeddedText{ID: candidate.ID, Text: embedding.BuildCandidateText(candidate)})
		}
	}

	if embedTextOnly {
		return writeJSON(embedOutput, texts)
	}

	apiKey := embedAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, embedding.DefaultConfig().WithModel(cfg.EmbeddingModel, embedding.DefaultDimensions), apiKey)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := embedder.Embed(ctx, t.Text)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", t.ID, err)
		}
		vectors[i] = vec
		logger.Debug("embedded record", zap.String("id", t.ID), zap.Int("dimensions", len(vec)))
	}

	var database *db.DB
	if embedSave {
		database, err = openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	if projects != nil {
		projects[0].Embedding = vectors[0]
		if database != nil {
			if err := database.SaveProjectEmbedding(ctx, projects[0], texts[0].Text); err != nil {
				return err
			}
		}
		return writeJSON(embedOutput, projects[0])
	}

	for i := range candidates {
		candidates[i].Embedding = vectors[i]
		if database != nil {
			if err := database.SaveResumeEmbedding(ctx, candidates[i], texts[i].Text); err != nil {
				return err
			}
		}
	}
	if database != nil {
		logger.Info("embeddings saved", zap.Int("candidates", len(candidates)))
	}
	return writeJSON(embedOutput, candidates)
}
