// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/collab-matcher/internal/embedding"
	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/ranking"
)

// Default values applied by Defaults
const (
	DefaultReputationCacheTTL = 10 * time.Minute
	DefaultMatchDeadline      = 30 * time.Second
	DefaultPort               = 8080
)

// Duration is a time.Duration written in JSON as a string such as "2s" or "10m"
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL        string   `json:"database_url,omitempty"`         // PostgreSQL connection URL
	RedisAddr          string   `json:"redis_addr,omitempty"`           // Redis address for the reputation cache
	ReputationCacheTTL Duration `json:"reputation_cache_ttl,omitempty"` // How long cached ratings live

	// Embedding
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	EmbeddingModel string `json:"embedding_model,omitempty"` // Gemini embedding model

	// Matching
	Weights           *ranking.WeightVector `json:"weights,omitempty"`
	Threshold         *float64              `json:"threshold,omitempty" validate:"omitempty,gte=-1,lte=1"`
	MaxPool           int                   `json:"max_pool,omitempty" validate:"gte=0"`
	TopK              int                   `json:"top_k,omitempty" validate:"gte=0"`
	Workers           int                   `json:"workers,omitempty" validate:"gte=0"`
	ReputationTimeout Duration              `json:"reputation_timeout,omitempty" validate:"gte=0"`
	Deadline          Duration              `json:"deadline,omitempty" validate:"gte=0"` // Bound on a whole match run

	// Tracing
	TracingEndpoint     string  `json:"tracing_endpoint,omitempty"`                             // OTLP gRPC collector; empty disables export
	TracingSamplingRate float64 `json:"tracing_sampling_rate,omitempty" validate:"gte=0,lte=1"` // Fraction of runs traced
	TracingInsecure     bool    `json:"tracing_insecure,omitempty"`                             // Plaintext collector connection

	// API server
	Port        int      `json:"port,omitempty" validate:"gte=0,lte=65535"` // HTTP listen port
	JWTSecret   string   `json:"jwt_secret,omitempty"`                      // Signs rating submission tokens; empty disables POST /ratings
	JWTTokenTTL Duration `json:"jwt_token_ttl,omitempty" validate:"gte=0"`  // Lifetime of issued tokens

	// Behavior
	Verbose  bool `json:"verbose,omitempty"`   // Print detailed debug information
	JSONLogs bool `json:"json_logs,omitempty"` // Emit logs as JSON
}

// Defaults returns the configuration used when neither a file nor flags set a value
func Defaults() Config {
	threshold := ranking.DefaultSemanticThreshold
	weights := ranking.DefaultWeights()
	return Config{
		ReputationCacheTTL:  Duration(DefaultReputationCacheTTL),
		EmbeddingModel:      embedding.DefaultModel,
		Weights:             &weights,
		Threshold:           &threshold,
		TopK:                matching.DefaultTopK,
		ReputationTimeout:   Duration(matching.DefaultReputationTimeout),
		Deadline:            Duration(DefaultMatchDeadline),
		TracingSamplingRate: 1,
		Port:                DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Weights, when present, must be non-negative and sum to 1.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Weights != nil {
		if err := c.Weights.Validate(); err != nil {
			return fmt.Errorf("config error: 'weights': %w", err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.TracingEndpoint == "" {
		result.TracingEndpoint = defaults.TracingEndpoint
	}
	if result.TracingSamplingRate == 0 {
		result.TracingSamplingRate = defaults.TracingSamplingRate
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}

	// Pointer fields: use default if nil
	if result.Weights == nil {
		result.Weights = defaults.Weights
	}
	if result.Threshold == nil {
		result.Threshold = defaults.Threshold
	}

	// Int and duration fields: use default if zero
	if result.MaxPool == 0 {
		result.MaxPool = defaults.MaxPool
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.ReputationTimeout == 0 {
		result.ReputationTimeout = defaults.ReputationTimeout
	}
	if result.ReputationCacheTTL == 0 {
		result.ReputationCacheTTL = defaults.ReputationCacheTTL
	}
	if result.Deadline == 0 {
		result.Deadline = defaults.Deadline
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.JWTTokenTTL == 0 {
		result.JWTTokenTTL = defaults.JWTTokenTTL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// MatchingOptions converts the configuration into engine options
func (c *Config) MatchingOptions() matching.Options {
	opts := matching.DefaultOptions()
	if c.Weights != nil {
		opts.Weights = *c.Weights
	}
	if c.Threshold != nil {
		threshold := *c.Threshold
		opts.Threshold = &threshold
	}
	opts.MaxPool = c.MaxPool
	opts.DefaultTopK = c.TopK
	opts.Workers = c.Workers
	if c.ReputationTimeout > 0 {
		opts.ReputationTimeout = time.Duration(c.ReputationTimeout)
	}
	return opts
}
