package ranking

import (
	"testing"

	"github.com/jonathan/collab-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestScoreSkillMatch_PartialOverlap(t *testing.T) {
	skills := map[string][]string{
		"languages": {"Python"},
		"databases": {"SQL"},
	}

	score, matched := ScoreSkillMatch([]string{"python", "ml"}, skills)

	assert.InDelta(t, 0.5, score, 1e-9)
	assert.Equal(t, []string{"python"}, matched)
}

func TestScoreSkillMatch_CaseInsensitive(t *testing.T) {
	skills := map[string][]string{
		"security": {"  SECURITY "},
		"lang":     {"Python"},
	}

	score, matched := ScoreSkillMatch([]string{"Security", "PYTHON"}, skills)

	assert.Equal(t, 1.0, score)
	assert.ElementsMatch(t, []string{"security", "python"}, matched)
}

func TestScoreSkillMatch_EmptyRequirements(t *testing.T) {
	score, matched := ScoreSkillMatch(nil, map[string][]string{"lang": {"Go"}})
	assert.Equal(t, 1.0, score)
	assert.Empty(t, matched)

	score, _ = ScoreSkillMatch([]string{"", "  "}, nil)
	assert.Equal(t, 1.0, score)
}

func TestScoreSkillMatch_NoCandidateSkills(t *testing.T) {
	score, matched := ScoreSkillMatch([]string{"go"}, nil)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, matched)
}

func TestScoreSkillMatch_DuplicateRequirementsCountOnce(t *testing.T) {
	score, _ := ScoreSkillMatch([]string{"Go", "go", "Rust"}, map[string][]string{"lang": {"go"}})
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestScoreExperienceAlignment(t *testing.T) {
	tests := []struct {
		name        string
		projectType types.ProjectType
		level       types.ExperienceLevel
		want        float64
	}{
		{"hackathon exact", types.ProjectTypeHackathon, types.ExperienceIntermediate, 1.0},
		{"hackathon below", types.ProjectTypeHackathon, types.ExperienceBeginner, 0.3},
		{"hackathon above", types.ProjectTypeHackathon, types.ExperienceAdvanced, 0.8},
		{"research exact", types.ProjectTypeResearch, types.ExperienceAdvanced, 1.0},
		{"research below", types.ProjectTypeResearch, types.ExperienceIntermediate, 0.3},
		{"startup exact", types.ProjectTypeStartup, types.ExperienceIntermediate, 1.0},
		{"open source exact", types.ProjectTypeOpenSource, types.ExperienceBeginner, 1.0},
		{"open source above", types.ProjectTypeOpenSource, types.ExperienceIntermediate, 0.8},
		{"unknown type prefers intermediate", types.ProjectType("campus_closed"), types.ExperienceIntermediate, 1.0},
		{"unknown level treated as beginner", types.ProjectTypeHackathon, types.ExperienceLevel("guru"), 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreExperienceAlignment(tt.projectType, tt.level))
		})
	}
}

func TestScoreYearCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		candidate *int
		preferred *int
		want      float64
	}{
		{"no preference", intPtr(2), nil, 1.0},
		{"missing candidate year", nil, intPtr(3), 1.0},
		{"exact match", intPtr(3), intPtr(3), 1.0},
		{"one year off", intPtr(2), intPtr(3), 0.75},
		{"two years off", intPtr(5), intPtr(3), 0.5},
		{"four years off reaches floor", intPtr(1), intPtr(5), 0.0},
		{"beyond floor never negative", intPtr(2020), intPtr(2026), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreYearCompatibility(tt.candidate, tt.preferred), 1e-9)
		})
	}
}

func TestScoreReputation_ColdStart(t *testing.T) {
	for _, rating := range []float64{0, 1.2, 3.5, 5} {
		assert.Equal(t, 1.0, ScoreReputation(rating, 0))
	}
}

func TestScoreReputation_ConfidenceScaling(t *testing.T) {
	// 4.0/5 with 1 of 5 projects
	assert.InDelta(t, 0.8*0.2, ScoreReputation(4.0, 1), 1e-9)
	// full confidence after five projects
	assert.InDelta(t, 0.8, ScoreReputation(4.0, 5), 1e-9)
	assert.InDelta(t, 0.8, ScoreReputation(4.0, 12), 1e-9)
}

func TestScoreReputation_ClampsOutOfRangeRating(t *testing.T) {
	assert.Equal(t, 1.0, ScoreReputation(7.5, 10))
}

func TestScoreReputation_MissingRatingIsNotPenalized(t *testing.T) {
	assert.Equal(t, 1.0, ScoreReputation(0, 5))
	assert.Equal(t, 1.0, ScoreReputation(-2, 10))
	// confidence still applies
	assert.InDelta(t, 0.4, ScoreReputation(0, 2), 1e-9)
}

func TestScoreAvailability(t *testing.T) {
	assert.Equal(t, 1.0, ScoreAvailability(types.AvailabilityHigh))
	assert.Equal(t, 0.7, ScoreAvailability(types.AvailabilityMedium))
	assert.Equal(t, 0.4, ScoreAvailability(types.AvailabilityLow))
	assert.Equal(t, 1.0, ScoreAvailability(types.Availability("HIGH")))
	assert.Equal(t, 0.5, ScoreAvailability(types.Availability("weekends")))
	assert.Equal(t, 0.5, ScoreAvailability(""))
}

func TestScoreSemantic_ClampsNegative(t *testing.T) {
	assert.Equal(t, 0.0, ScoreSemantic(-0.4))
	assert.Equal(t, 0.6, ScoreSemantic(0.6))
}

func TestComputeSignals_HackathonScenario(t *testing.T) {
	project := &types.ProjectProfile{
		ID:             "proj_001",
		RequiredSkills: []string{"security", "python"},
		ProjectType:    types.ProjectTypeHackathon,
		PreferredYear:  intPtr(3),
	}
	candidate := &types.CandidateProfile{
		ID:           "cand_a",
		Skills:       map[string][]string{"technical": {"Python", "Security", "Linux"}},
		Experience:   types.Experience{Overall: types.ExperienceIntermediate},
		Year:         intPtr(3),
		Availability: types.AvailabilityHigh,
		Reputation:   types.Reputation{AverageRating: 2.0, CompletedProjects: 0},
	}

	signals, matched := ComputeSignals(project, candidate, 0.42)

	assert.Equal(t, types.SignalScores{
		Semantic:     0.42,
		Skill:        1.0,
		Experience:   1.0,
		Year:         1.0,
		Reputation:   1.0,
		Availability: 1.0,
	}, signals)
	assert.Equal(t, []string{"python", "security"}, matched)
}
