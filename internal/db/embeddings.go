package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/jonathan/collab-matcher/internal/ingestion"
)

// GetProject retrieves a stored project by ID. Returns (nil, nil) when the project does not exist.
func (db *DB) GetProject(ctx context.Context, projectID string) (*ingestion.ProjectRecord, error) {
	var projectJSON []byte
	var vec *pgvector.Vector

	err := db.pool.QueryRow(ctx,
		`SELECT project_json, embedding FROM project_embeddings WHERE project_id = $1`,
		projectID,
	).Scan(&projectJSON, &vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}

	return &ingestion.ProjectRecord{
		ProjectID:  projectID,
		Embedding:  fromVector(vec),
		ParsedJSON: json.RawMessage(projectJSON),
	}, nil
}

// SaveProjectEmbedding stores a project payload with its semantic text and embedding
func (db *DB) SaveProjectEmbedding(ctx context.Context, rec ingestion.ProjectRecord, semanticText string) error {
	payload := rec.ParsedJSON
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO project_embeddings (project_id, project_json, semantic_text, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id) DO UPDATE
		 SET project_json = $2, semantic_text = $3, embedding = $4, updated_at = NOW()`,
		rec.ProjectID, []byte(payload), semanticText, toVector(rec.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", rec.ProjectID, err)
	}
	return nil
}

// ListResumes retrieves every stored resume, ordered by user ID.
// Resumes without an embedding are included with a nil embedding.
func (db *DB) ListResumes(ctx context.Context) ([]ingestion.CandidateRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, parsed_json, embedding FROM resume_embeddings ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var records []ingestion.CandidateRecord
	for rows.Next() {
		var rec ingestion.CandidateRecord
		var parsed []byte
		var vec *pgvector.Vector
		if err := rows.Scan(&rec.UserID, &parsed, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		rec.ParsedJSON = json.RawMessage(parsed)
		rec.Embedding = fromVector(vec)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return records, nil
}

// SaveResumeEmbedding stores a resume payload with its semantic text and embedding
func (db *DB) SaveResumeEmbedding(ctx context.Context, rec ingestion.CandidateRecord, semanticText string) error {
	payload := rec.ParsedJSON
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_embeddings (user_id, parsed_json, semantic_text, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET parsed_json = $2, semantic_text = $3, embedding = $4, updated_at = NOW()`,
		rec.UserID, []byte(payload), semanticText, toVector(rec.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save resume %s: %w", rec.UserID, err)
	}
	return nil
}
