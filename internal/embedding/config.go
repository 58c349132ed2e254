// Package embedding turns project and candidate profiles into embedding vectors.
package embedding

import "github.com/google/generative-ai-go/genai"

// Defaults for the Gemini embedding model
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768
)

// Config holds the embedding model configuration
type Config struct {
	Model      string
	Dimensions int
	TaskType   genai.TaskType
}

// DefaultConfig returns the Gemini text-embedding-004 configuration
func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Dimensions: DefaultDimensions,
		TaskType:   genai.TaskTypeSemanticSimilarity,
	}
}

// WithModel returns a copy of the config using a different model and dimension count
func (c *Config) WithModel(model string, dimensions int) *Config {
	return &Config{
		Model:      model,
		Dimensions: dimensions,
		TaskType:   c.TaskType,
	}
}
