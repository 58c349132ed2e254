// Package ranking provides the scoring and ranking functions used to match candidates to projects.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/collab-matcher/internal/types"
)

// Rank sorts results by final score, highest first.
// The sort is stable, so equal scores keep their input order.
func Rank(results []types.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

// GenerateNotes creates a brief explanation of a candidate's scores.
func GenerateNotes(scores types.SignalScores, matchedSkills []string, completedProjects int) string {
	var parts []string

	// Skill match description
	switch {
	case len(matchedSkills) == 0 && scores.Skill >= 1.0:
		parts = append(parts, "No required skills")
	case len(matchedSkills) == 0:
		parts = append(parts, "No skill matches")
	case scores.Skill >= 0.7:
		parts = append(parts, fmt.Sprintf("Strong skill match (%s)", strings.Join(matchedSkills, ", ")))
	case scores.Skill >= 0.4:
		parts = append(parts, fmt.Sprintf("Moderate skill match (%s)", strings.Join(matchedSkills, ", ")))
	default:
		parts = append(parts, fmt.Sprintf("Weak skill match (%s)", strings.Join(matchedSkills, ", ")))
	}

	// Experience description
	switch scores.Experience {
	case experienceExactScore:
		parts = append(parts, "Experience matches project type")
	case experienceAboveScore:
		parts = append(parts, "More experienced than required")
	default:
		parts = append(parts, "Less experienced than preferred")
	}

	if completedProjects <= 0 {
		parts = append(parts, "New collaborator (no rating history)")
	}

	return strings.Join(parts, ". ")
}
