// Package types provides type definitions for structured data used throughout the collaborator matching system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ProjectType classifies a project and drives the preferred experience level
type ProjectType string

// Known project types
const (
	ProjectTypeHackathon  ProjectType = "hackathon"
	ProjectTypeResearch   ProjectType = "research"
	ProjectTypeStartup    ProjectType = "startup"
	ProjectTypeOpenSource ProjectType = "open_source"
)

// DefaultProjectType is used when a project payload carries no type
const DefaultProjectType = ProjectTypeHackathon

// ParseProjectType normalizes a raw project type string.
// Unrecognized values are kept verbatim so that scorers can treat them as unknown.
func ParseProjectType(raw string) ProjectType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if normalized == "" {
		return DefaultProjectType
	}
	return ProjectType(normalized)
}

// Known reports whether the project type is one of the recognized values
func (p ProjectType) Known() bool {
	switch p {
	case ProjectTypeHackathon, ProjectTypeResearch, ProjectTypeStartup, ProjectTypeOpenSource:
		return true
	}
	return false
}

// ProjectProfile represents a project looking for collaborators.
// A profile is immutable once loaded for a matching run.
type ProjectProfile struct {
	ID             string      `json:"project_id" validate:"required"`
	Title          string      `json:"title,omitempty"`
	Description    string      `json:"description,omitempty"`
	RequiredSkills []string    `json:"required_skills"`
	ProjectType    ProjectType `json:"project_type"`
	// PreferredYear is the preferred candidate year; nil means no preference
	PreferredYear *int      `json:"preferred_year,omitempty"`
	Embedding     []float64 `json:"embedding,omitempty"`

	// Descriptive only, never scored
	PreferredTechnologies []string `json:"preferred_technologies,omitempty"`
	Domains               []string `json:"domains,omitempty"`
	TeamSize              int      `json:"team_size,omitempty"`
}

// HasEmbedding reports whether the project carries an embedding vector
func (p *ProjectProfile) HasEmbedding() bool {
	return p != nil && len(p.Embedding) > 0
}
