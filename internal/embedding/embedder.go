package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoEmbedding is returned when the backend answers without a vector
var ErrNoEmbedding = errors.New("no embedding in response")

// Embedder produces a fixed-dimension vector for a piece of text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimensions() int
}

// contentEmbedder is the part of genai.EmbeddingModel the embedder uses
type contentEmbedder interface {
	EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder implements Embedder with the Gemini embedding API
type GeminiEmbedder struct {
	client     *genai.Client
	model      contentEmbedder
	dimensions int
}

// NewGeminiEmbedder creates a Gemini embedder. A nil config uses DefaultConfig.
func NewGeminiEmbedder(ctx context.Context, config *Config, apiKey string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.EmbeddingModel(config.Model)
	model.TaskType = config.TaskType

	return &GeminiEmbedder{
		client:     client,
		model:      model,
		dimensions: config.Dimensions,
	}, nil
}

// Dimensions returns the length of every vector this embedder produces
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Embed returns the embedding of text. Blank text yields a zero vector without calling the API.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float64, e.dimensions), nil
	}

	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrNoEmbedding
	}

	values := resp.Embedding.Values
	if e.dimensions > 0 && len(values) != e.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(values), e.dimensions)
	}

	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}
	return vector, nil
}

// Close releases resources held by the client
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
