package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/ranking"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost:5432/converge",
		"redis_addr": "localhost:6379",
		"threshold": 0.1,
		"top_k": 10,
		"reputation_timeout": "500ms",
		"reputation_cache_ttl": "1h",
		"weights": {"semantic": 0.25, "skill": 0.25, "experience": 0.2, "year": 0.1, "reputation": 0.1, "availability": 0.1},
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost:5432/converge", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.NotNil(t, cfg.Threshold)
	assert.Equal(t, 0.1, *cfg.Threshold)
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.ReputationTimeout)
	assert.Equal(t, Duration(time.Hour), cfg.ReputationCacheTTL)
	require.NotNil(t, cfg.Weights)
	assert.Equal(t, 0.25, cfg.Weights.Semantic)
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"deadline": "soon"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	threshold := func(v float64) *float64 { return &v }
	badWeights := ranking.DefaultWeights()
	badWeights.Skill = 0.5

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "defaults", cfg: Defaults()},
		{name: "threshold above one", cfg: Config{Threshold: threshold(1.2)}, wantErr: "Threshold"},
		{name: "threshold below minus one", cfg: Config{Threshold: threshold(-1.5)}, wantErr: "Threshold"},
		{name: "negative top k", cfg: Config{TopK: -1}, wantErr: "TopK"},
		{name: "negative workers", cfg: Config{Workers: -3}, wantErr: "Workers"},
		{name: "negative timeout", cfg: Config{ReputationTimeout: Duration(-time.Second)}, wantErr: "ReputationTimeout"},
		{name: "sampling rate above one", cfg: Config{TracingSamplingRate: 2}, wantErr: "TracingSamplingRate"},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "Port"},
		{name: "negative token ttl", cfg: Config{JWTTokenTTL: Duration(-time.Hour)}, wantErr: "JWTTokenTTL"},
		{name: "weights not summing to one", cfg: Config{Weights: &badWeights}, wantErr: "weights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	threshold := 0.2
	cfg := &Config{
		DatabaseURL: "postgres://file",
		Threshold:   &threshold,
		TopK:        3,
	}

	merged := cfg.MergeWithDefaults(Config{
		DatabaseURL: "postgres://default",
		RedisAddr:   "localhost:6379",
		APIKey:      "default-key",
		JWTSecret:   "env-secret",
		TopK:        5,
		Workers:     4,
	})

	assert.Equal(t, "postgres://file", merged.DatabaseURL)
	assert.Equal(t, "localhost:6379", merged.RedisAddr)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "env-secret", merged.JWTSecret)
	assert.Equal(t, 0.2, *merged.Threshold)
	assert.Equal(t, 3, merged.TopK)
	assert.Equal(t, 4, merged.Workers)
	assert.Equal(t, "postgres://file", cfg.DatabaseURL, "original should be unchanged")
}

func TestMergeWithDefaults_Defaults(t *testing.T) {
	merged := (&Config{}).MergeWithDefaults(Defaults())

	require.NotNil(t, merged.Threshold)
	assert.Equal(t, ranking.DefaultSemanticThreshold, *merged.Threshold)
	assert.Equal(t, ranking.DefaultWeights(), *merged.Weights)
	assert.Equal(t, matching.DefaultTopK, merged.TopK)
	assert.Equal(t, Duration(DefaultReputationCacheTTL), merged.ReputationCacheTTL)
	assert.Equal(t, Duration(DefaultMatchDeadline), merged.Deadline)
	assert.Equal(t, "text-embedding-004", merged.EmbeddingModel)
	assert.Equal(t, 1.0, merged.TracingSamplingRate)
	assert.Empty(t, merged.TracingEndpoint)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Empty(t, merged.JWTSecret)
}

func TestMatchingOptions(t *testing.T) {
	threshold := 0.3
	cfg := Config{
		Threshold:         &threshold,
		MaxPool:           50,
		TopK:              7,
		Workers:           2,
		ReputationTimeout: Duration(time.Second),
	}

	opts := cfg.MatchingOptions()
	require.NotNil(t, opts.Threshold)
	assert.Equal(t, 0.3, *opts.Threshold)
	assert.Equal(t, 50, opts.MaxPool)
	assert.Equal(t, 7, opts.DefaultTopK)
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, time.Second, opts.ReputationTimeout)
	assert.Equal(t, ranking.DefaultWeights(), opts.Weights)

	_, err := matching.New(opts)
	assert.NoError(t, err)
}

func TestDuration_JSON(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(data))

	var parsed Duration
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, d, parsed)

	require.NoError(t, parsed.UnmarshalJSON([]byte("1000")))
	assert.Equal(t, Duration(1000), parsed)
}
