package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/collab-matcher/internal/types"
)

type fakeModel struct {
	calls  int
	values []float32
	err    error
}

func (f *fakeModel) EmbedContent(_ context.Context, _ ...genai.Part) (*genai.EmbedContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &genai.EmbedContentResponse{Embedding: &genai.ContentEmbedding{Values: f.values}}, nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "text-embedding-004", cfg.Model)
	assert.Equal(t, 768, cfg.Dimensions)

	other := cfg.WithModel("embedding-001", 512)
	assert.Equal(t, "embedding-001", other.Model)
	assert.Equal(t, 512, other.Dimensions)
	assert.Equal(t, DefaultModel, cfg.Model, "original config should be unchanged")
}

func TestNewGeminiEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestEmbed_BlankTextIsZeroVector(t *testing.T) {
	model := &fakeModel{}
	e := &GeminiEmbedder{model: model, dimensions: DefaultDimensions}

	for _, text := range []string{"", "   ", "\n\t"} {
		vector, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Len(t, vector, DefaultDimensions)
		for _, v := range vector {
			assert.Zero(t, v)
		}
	}
	assert.Zero(t, model.calls, "blank text should not reach the API")
}

func TestEmbed_ConvertsValues(t *testing.T) {
	model := &fakeModel{values: []float32{0.5, -0.25, 1}}
	e := &GeminiEmbedder{model: model, dimensions: 3}

	vector, err := e.Embed(context.Background(), "PROJECT TITLE:\nRide share")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.25, 1}, vector)
	assert.Equal(t, 1, model.calls)
}

func TestEmbed_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	e := &GeminiEmbedder{model: &fakeModel{err: boom}, dimensions: 3}
	_, err := e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, boom)

	e = &GeminiEmbedder{model: &fakeModel{}, dimensions: 3}
	_, err = e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoEmbedding)

	e = &GeminiEmbedder{model: &fakeModel{values: []float32{1, 2}}, dimensions: 3}
	_, err = e.Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "expected 3")
}

func TestBuildProjectText(t *testing.T) {
	p := &types.ProjectProfile{
		Title:                 "Campus ride share",
		Description:           "Match students driving home.",
		RequiredSkills:        []string{"React", "Go", "React", " "},
		PreferredTechnologies: []string{"Docker"},
		ProjectType:           types.ProjectTypeOpenSource,
	}

	want := "PROJECT TITLE:\nCampus ride share\n\n" +
		"PROJECT DESCRIPTION:\nMatch students driving home.\n\n" +
		"PROJECT REQUIREMENTS:\nGo, React\n\n" +
		"PREFERRED TECHNOLOGIES:\nDocker\n\n" +
		"PROJECT TYPE:\nOPEN_SOURCE"
	assert.Equal(t, want, BuildProjectText(p))
	assert.Empty(t, BuildProjectText(&types.ProjectProfile{}))
	assert.Empty(t, BuildProjectText(nil))
}

func TestBuildCandidateText(t *testing.T) {
	c := &types.CandidateProfile{
		Skills: map[string][]string{
			"programming": {"Python", "Go"},
			"frameworks":  {"React"},
			"empty":       {},
		},
		Experience: types.Experience{
			Overall:  types.ExperienceIntermediate,
			ByDomain: map[string]string{"web": "advanced", "ml": "beginner"},
		},
	}

	want := "SKILLS:\nframeworks: React\nprogramming: Go, Python\n\n" +
		"EXPERIENCE LEVEL:\nINTERMEDIATE\n\n" +
		"DOMAIN EXPERIENCE:\nml (beginner), web (advanced)"
	assert.Equal(t, want, BuildCandidateText(c))
	assert.Equal(t, BuildCandidateText(c), BuildCandidateText(c))
}
