// Package ranking provides the scoring and ranking functions used to match candidates to projects.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/collab-matcher/internal/types"
)

// Scoring constants for the individual signals
const (
	experienceExactScore = 1.0
	experienceBelowScore = 0.3
	experienceAboveScore = 0.8

	yearDecayPerYear = 0.25

	maxRating               = 5.0
	reputationFullTrackSize = 5.0

	availabilityDefaultScore = 0.5
)

// preferredExperience maps a project type to the experience level it wants
var preferredExperience = map[types.ProjectType]types.ExperienceLevel{
	types.ProjectTypeHackathon:  types.ExperienceIntermediate,
	types.ProjectTypeResearch:   types.ExperienceAdvanced,
	types.ProjectTypeStartup:    types.ExperienceIntermediate,
	types.ProjectTypeOpenSource: types.ExperienceBeginner,
}

var availabilityScores = map[types.Availability]float64{
	types.AvailabilityHigh:   1.0,
	types.AvailabilityMedium: 0.7,
	types.AvailabilityLow:    0.4,
}

// NormalizeSkill lower-cases and trims a skill name for comparison
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// ScoreSkillMatch returns |required ∩ candidate| / |required| and the matched skills.
// An empty requirement set scores 1.0.
func ScoreSkillMatch(required []string, candidateSkills map[string][]string) (float64, []string) {
	requiredSet := make(map[string]bool, len(required))
	for _, skill := range required {
		if normalized := NormalizeSkill(skill); normalized != "" {
			requiredSet[normalized] = true
		}
	}
	if len(requiredSet) == 0 {
		return 1.0, nil
	}

	// Flatten every category into one set
	candidateSet := make(map[string]bool)
	for _, category := range candidateSkills {
		for _, skill := range category {
			if normalized := NormalizeSkill(skill); normalized != "" {
				candidateSet[normalized] = true
			}
		}
	}

	matched := make([]string, 0, len(requiredSet))
	for skill := range requiredSet {
		if candidateSet[skill] {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)

	score := float64(len(matched)) / float64(len(requiredSet))
	return clampUnit(score), matched
}

// PreferredExperience returns the experience level a project type prefers.
// Unknown project types prefer intermediate.
func PreferredExperience(projectType types.ProjectType) types.ExperienceLevel {
	if level, ok := preferredExperience[projectType]; ok {
		return level
	}
	return types.ExperienceIntermediate
}

// ScoreExperienceAlignment compares the candidate level with the project's preferred level.
// Under-qualified candidates are penalized more than over-qualified ones.
func ScoreExperienceAlignment(projectType types.ProjectType, overall types.ExperienceLevel) float64 {
	preferred := PreferredExperience(projectType).Ordinal()
	actual := overall.Ordinal()
	if actual == 0 {
		actual = types.ExperienceBeginner.Ordinal()
	}

	switch {
	case actual == preferred:
		return experienceExactScore
	case actual < preferred:
		return experienceBelowScore
	default:
		return experienceAboveScore
	}
}

// ScoreYearCompatibility decays by 0.25 per year of distance from the preferred year.
// A missing preference or a missing candidate year is never penalized.
func ScoreYearCompatibility(candidateYear, preferredYear *int) float64 {
	if preferredYear == nil || candidateYear == nil {
		return 1.0
	}

	diff := math.Abs(float64(*candidateYear - *preferredYear))
	return clampUnit(1.0 - yearDecayPerYear*diff)
}

// ScoreReputation scales the normalized rating by a confidence factor that
// reaches 1 after five completed projects. Cold-start candidates score 1.0,
// and a missing (non-positive) rating normalizes to 1.0.
func ScoreReputation(averageRating float64, completedProjects int) float64 {
	if completedProjects <= 0 {
		return 1.0
	}

	confidence := math.Min(1.0, float64(completedProjects)/reputationFullTrackSize)
	normalized := 1.0
	if averageRating > 0 {
		normalized = math.Min(averageRating, maxRating) / maxRating
	}
	return clampUnit(normalized * confidence)
}

// ScoreAvailability maps availability to a score; unknown values score a neutral 0.5
func ScoreAvailability(availability types.Availability) float64 {
	if score, ok := availabilityScores[types.ParseAvailability(string(availability))]; ok {
		return score
	}
	return availabilityDefaultScore
}

// ScoreSemantic turns a raw cosine similarity into a [0, 1] signal
func ScoreSemantic(similarity float64) float64 {
	return clampUnit(similarity)
}

// ComputeSignals runs the five attribute scorers plus the semantic signal for one candidate
func ComputeSignals(project *types.ProjectProfile, candidate *types.CandidateProfile, similarity float64) (types.SignalScores, []string) {
	skill, matched := ScoreSkillMatch(project.RequiredSkills, candidate.Skills)

	return types.SignalScores{
		Semantic:     ScoreSemantic(similarity),
		Skill:        skill,
		Experience:   ScoreExperienceAlignment(project.ProjectType, candidate.Experience.Overall),
		Year:         ScoreYearCompatibility(candidate.Year, project.PreferredYear),
		Reputation:   ScoreReputation(candidate.Reputation.AverageRating, candidate.Reputation.CompletedProjects),
		Availability: ScoreAvailability(candidate.Availability),
	}, matched
}
