package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/collab-matcher/internal/types"
)

// MatchRun is a stored match response
type MatchRun struct {
	ID        uuid.UUID            `json:"id"`
	ProjectID string               `json:"project_id"`
	CreatedAt time.Time            `json:"created_at"`
	Response  *types.MatchResponse `json:"response"`
}

// SaveMatchRun stores a match response under its request ID and returns that ID.
// A response without a valid request ID gets a fresh one.
func (db *DB) SaveMatchRun(ctx context.Context, resp *types.MatchResponse) (uuid.UUID, error) {
	id, err := uuid.Parse(resp.Summary.RequestID)
	if err != nil {
		id = uuid.New()
	}

	content, err := json.Marshal(resp)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal match response: %w", err)
	}

	s := resp.Summary
	_, err = db.pool.Exec(ctx,
		`INSERT INTO match_runs (id, project_id, pool_size, returned, fallback_used, partial, response)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, s.ProjectID, s.PoolSize, s.Returned, s.FallbackUsed, s.Partial, content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save match run: %w", err)
	}
	return id, nil
}

// GetMatchRun retrieves a stored match run. Returns (nil, nil) when the run does not exist.
func (db *DB) GetMatchRun(ctx context.Context, id uuid.UUID) (*MatchRun, error) {
	run := MatchRun{ID: id}
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT project_id, created_at, response FROM match_runs WHERE id = $1`,
		id,
	).Scan(&run.ProjectID, &run.CreatedAt, &content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match run: %w", err)
	}

	run.Response = &types.MatchResponse{}
	if err := json.Unmarshal(content, run.Response); err != nil {
		return nil, fmt.Errorf("failed to decode match run %s: %w", id, err)
	}
	return &run, nil
}

// ListMatchRuns returns the most recent runs for a project, newest first, without their responses
func (db *DB) ListMatchRuns(ctx context.Context, projectID string, limit int) ([]MatchRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, created_at FROM match_runs
		 WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list match runs: %w", err)
	}
	defer rows.Close()

	var runs []MatchRun
	for rows.Next() {
		var run MatchRun
		if err := rows.Scan(&run.ID, &run.ProjectID, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
