// Package types provides type definitions for structured data used throughout the collaborator matching system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ExperienceLevel is an ordinal experience bucket
type ExperienceLevel string

// Known experience levels
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ParseExperienceLevel normalizes a raw level. Missing or unknown values become beginner.
func ParseExperienceLevel(raw string) ExperienceLevel {
	level := ExperienceLevel(strings.ToLower(strings.TrimSpace(raw)))
	if level.Ordinal() == 0 {
		return ExperienceBeginner
	}
	return level
}

// Ordinal returns beginner=1, intermediate=2, advanced=3 and 0 for anything else
func (e ExperienceLevel) Ordinal() int {
	switch e {
	case ExperienceBeginner:
		return 1
	case ExperienceIntermediate:
		return 2
	case ExperienceAdvanced:
		return 3
	}
	return 0
}

// Availability describes how much time a candidate can commit
type Availability string

// Known availability values
const (
	AvailabilityLow    Availability = "low"
	AvailabilityMedium Availability = "medium"
	AvailabilityHigh   Availability = "high"
)

// ParseAvailability lower-cases and trims a raw availability value.
// Unknown values are kept so the availability scorer can apply its neutral default.
func ParseAvailability(raw string) Availability {
	return Availability(strings.ToLower(strings.TrimSpace(raw)))
}

// Experience holds overall and per-domain experience levels
type Experience struct {
	Overall  ExperienceLevel   `json:"overall"`
	ByDomain map[string]string `json:"by_domain,omitempty"`
}

// Reputation holds the rating signals for a candidate
type Reputation struct {
	AverageRating     float64 `json:"average_rating"`     // 0-5 scale
	CompletedProjects int     `json:"completed_projects"` // >= 0
}

// CandidateProfile represents a potential collaborator
type CandidateProfile struct {
	ID           string              `json:"user_id" validate:"required"`
	Name         string              `json:"name,omitempty"`
	Embedding    []float64           `json:"embedding,omitempty"`
	Skills       map[string][]string `json:"skills"`
	Experience   Experience          `json:"experience_level"`
	Year         *int                `json:"year,omitempty"`
	Availability Availability        `json:"availability"`
	Reputation   Reputation          `json:"reputation_signals"`
}

// HasEmbedding reports whether the candidate carries an embedding vector
func (c *CandidateProfile) HasEmbedding() bool {
	return c != nil && len(c.Embedding) > 0
}

// DisplayName returns the candidate name, falling back to the identifier
func (c *CandidateProfile) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.ID
}
