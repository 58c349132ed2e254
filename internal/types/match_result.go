// Package types provides type definitions for structured data used throughout the collaborator matching system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SignalScores holds the six normalized per-signal scores, each in [0, 1]
type SignalScores struct {
	Semantic     float64 `json:"semantic_score"`
	Skill        float64 `json:"skill_score"`
	Experience   float64 `json:"experience_score"`
	Year         float64 `json:"year_score"`
	Reputation   float64 `json:"reputation_score"`
	Availability float64 `json:"availability_score"`
}

// WeightedContributions holds each signal multiplied by its weight
type WeightedContributions struct {
	Semantic     float64 `json:"w_semantic"`
	Skill        float64 `json:"w_skill"`
	Experience   float64 `json:"w_experience"`
	Year         float64 `json:"w_year"`
	Reputation   float64 `json:"w_reputation"`
	Availability float64 `json:"w_availability"`
}

// Total returns the sum of all contributions
func (w WeightedContributions) Total() float64 {
	return w.Semantic + w.Skill + w.Experience + w.Year + w.Reputation + w.Availability
}

// DisplayProfile carries presentation-only fields. They never affect scoring.
type DisplayProfile struct {
	Name         string       `json:"name"`
	Year         *int         `json:"year,omitempty"`
	Availability Availability `json:"availability,omitempty"`
}

// MatchResult represents a single scored candidate
type MatchResult struct {
	CandidateID   string                `json:"user_id"`
	FinalScore    float64               `json:"final_score"`
	Scores        SignalScores          `json:"scores"`
	Contributions WeightedContributions `json:"score_breakdown"`
	// RawSimilarity is the unclamped cosine similarity used by the gate
	RawSimilarity float64        `json:"raw_similarity"`
	MatchedSkills []string       `json:"matched_skills"`
	Notes         string         `json:"notes,omitempty"`
	Profile       DisplayProfile `json:"profile"`
}

// MatchSummary reports what happened during a match run
type MatchSummary struct {
	RequestID         string  `json:"request_id"`
	ProjectID         string  `json:"project_id"`
	PoolSize          int     `json:"pool_size"`
	MissingEmbeddings int     `json:"missing_embeddings"`
	ZeroEmbeddings    int     `json:"zero_embeddings"`
	PassedGate        int     `json:"passed_gate"`
	Scored            int     `json:"scored"`
	Returned          int     `json:"returned"`
	Threshold         float64 `json:"threshold"`
	// FallbackUsed is set when no candidate cleared the gate and the top-K by raw similarity were used instead
	FallbackUsed bool `json:"fallback_used"`
	// Partial is set when a deadline stopped scoring before every gated candidate was scored
	Partial bool `json:"partial"`
}

// MatchResponse is the ranked output of a match run
type MatchResponse struct {
	Summary MatchSummary  `json:"summary"`
	Results []MatchResult `json:"results"`
}
