package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/collab-matcher/internal/schemas"
	"github.com/jonathan/collab-matcher/internal/types"
)

func TestMatchCommand_FromFiles(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out", "matches.json")
	metricsPath := filepath.Join(dir, "matcher.prom")

	err := executeCommand(t, "match",
		"--project", filepath.Join("testdata", "project.json"),
		"--candidates", filepath.Join("testdata", "candidates.json"),
		"--out", outPath,
		"--metrics-textfile", metricsPath,
	)
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NoError(t, schemas.Validate(schemas.MatchResponse, content))

	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(content, &resp))
	assert.Equal(t, "42", resp.Summary.ProjectID)
	assert.Equal(t, 3, resp.Summary.PoolSize)
	assert.Equal(t, 1, resp.Summary.MissingEmbeddings)
	assert.False(t, resp.Summary.Partial)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "21BCE0001", resp.Results[0].CandidateID)
	assert.Equal(t, "21BCE0002", resp.Results[1].CandidateID)
	assert.GreaterOrEqual(t, resp.Results[0].FinalScore, resp.Results[1].FinalScore)
	assert.Equal(t, []string{"go", "react"}, resp.Results[0].MatchedSkills)

	exported, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(exported), `matcher_runs_total{outcome="success"} 1`)
}

func TestMatchCommand_EmptyPool(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "matches.json")

	err := executeCommand(t, "match",
		"--project", filepath.Join("testdata", "project.json"),
		"--candidates", filepath.Join("testdata", "candidates_empty.json"),
		"--out", outPath,
	)
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"results": []`)

	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(content, &resp))
	assert.Equal(t, 0, resp.Summary.PoolSize)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestMatchCommand_TopAndThreshold(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "matches.json")

	err := executeCommand(t, "match",
		"--project", filepath.Join("testdata", "project.json"),
		"--candidates", filepath.Join("testdata", "candidates.json"),
		"--top", "1",
		"--threshold", "0.995",
		"--out", outPath,
	)
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(content, &resp))
	assert.Equal(t, 0.995, resp.Summary.Threshold)
	assert.True(t, resp.Summary.FallbackUsed)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "21BCE0001", resp.Results[0].CandidateID)
}

func TestMatchCommand_ProjectWithoutEmbedding(t *testing.T) {
	err := executeCommand(t, "match",
		"--project", filepath.Join("testdata", "project_no_embedding.json"),
		"--candidates", filepath.Join("testdata", "candidates.json"),
		"--out", filepath.Join(t.TempDir(), "matches.json"),
	)
	require.Error(t, err)
	assert.Equal(t, exitUnprocessable, exitCode(err))
}

func TestMatchCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no project",
			args:    []string{"match"},
			wantErr: "either --project-id or --project",
		},
		{
			name:    "project without candidates",
			args:    []string{"match", "--project", filepath.Join("testdata", "project.json")},
			wantErr: "candidates",
		},
		{
			name:    "project id with project file",
			args:    []string{"match", "--project-id", "42", "--project", filepath.Join("testdata", "project.json"), "--candidates", filepath.Join("testdata", "candidates.json")},
			wantErr: "project-id",
		},
		{
			name:    "missing candidates file",
			args:    []string{"match", "--project", filepath.Join("testdata", "project.json"), "--candidates", filepath.Join("testdata", "missing.json")},
			wantErr: "failed to read candidates file",
		},
		{
			name:    "threshold out of range",
			args:    []string{"match", "--project", filepath.Join("testdata", "project.json"), "--candidates", filepath.Join("testdata", "candidates.json"), "--threshold", "2"},
			wantErr: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchCommand_StoredProjectNeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := executeCommand(t, "match", "--project-id", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
