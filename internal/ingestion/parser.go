package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/logging"
	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/schemas"
	"github.com/jonathan/collab-matcher/internal/types"
)

// Defaults applied when a payload omits a field
const (
	DefaultAvailability = types.AvailabilityMedium
	DefaultExperience   = types.ExperienceBeginner
)

// CandidateRecord is a stored resume: the candidate identifier, its embedding and the parsed resume JSON
type CandidateRecord struct {
	UserID     string          `json:"user_id"`
	Embedding  []float64       `json:"embedding,omitempty"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"`
}

// ProjectRecord is a stored project: identifier, embedding and the parsed project JSON
type ProjectRecord struct {
	ProjectID  string          `json:"project_id"`
	Embedding  []float64       `json:"embedding,omitempty"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"`
}

// Parser decodes records into typed profiles. Payloads are decoded leniently:
// a field of the wrong shape falls back to its default and is logged.
type Parser struct {
	logger   *zap.Logger
	validate *validator.Validate
}

// NewParser creates a parser. A nil logger discards schema warnings.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		logger:   logging.OrNop(logger),
		validate: validator.New(),
	}
}

// decodePayload unmarshals raw into a generic object and checks it against the schema.
// Schema violations are logged, not returned.
func (p *Parser) decodePayload(name schemas.Name, id string, raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &LoadError{Message: "payload for " + id + " is not a JSON object", Cause: err}
	}

	if err := schemas.Validate(name, raw); err != nil {
		var loadErr *schemas.SchemaLoadError
		if errors.As(err, &loadErr) {
			return nil, &LoadError{Message: "cannot validate payload", Cause: err}
		}
		violations := make([]string, 0)
		for _, f := range schemas.FieldErrors(err) {
			violations = append(violations, f.String())
		}
		p.logger.Warn("payload does not match schema, applying defaults",
			zap.String("schema", string(name)),
			zap.String("id", id),
			zap.Strings("violations", violations),
		)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// Candidate decodes a stored resume into a candidate profile.
//
// Defaults: missing overall experience is beginner, missing availability is
// medium, a year that is not a positive whole number is no year, and skill
// categories that are not lists are dropped. Reputation signals are clamped
// to a 0-5 rating and a non-negative project count.
func (p *Parser) Candidate(rec CandidateRecord) (*types.CandidateProfile, error) {
	payload, err := p.decodePayload(schemas.CandidatePayload, rec.UserID, rec.ParsedJSON)
	if err != nil {
		return nil, err
	}

	profile, _ := object(payload["profile"])

	candidate := &types.CandidateProfile{
		ID:           rec.UserID,
		Name:         text(profile["name"]),
		Embedding:    rec.Embedding,
		Skills:       map[string][]string{},
		Year:         year(profile["year"]),
		Availability: DefaultAvailability,
		Experience:   types.Experience{Overall: DefaultExperience},
	}
	if candidate.ID == "" {
		candidate.ID = text(profile["user_id"])
	}
	if availability := text(profile["availability"]); availability != "" {
		candidate.Availability = types.ParseAvailability(availability)
	}

	if skills, ok := object(payload["skills"]); ok {
		for _, category := range sortedKeys(skills) {
			if list, ok := stringList(skills[category]); ok {
				candidate.Skills[category] = list
			}
		}
	}

	if experience, ok := object(payload["experience_level"]); ok {
		candidate.Experience.Overall = types.ParseExperienceLevel(text(experience["overall"]))
		candidate.Experience.ByDomain = stringMap(experience["by_domain"])
	}

	if signals, ok := object(payload["reputation_signals"]); ok {
		if rating, ok := number(signals["average_rating"]); ok {
			candidate.Reputation.AverageRating = clampRating(rating)
		}
		if count, ok := number(signals["completed_projects"]); ok && count > 0 {
			candidate.Reputation.CompletedProjects = int(count)
		}
	}

	if err := p.validate.Struct(candidate); err != nil {
		return nil, &ValidationError{Message: "candidate has no user_id", Cause: err}
	}
	return candidate, nil
}

// Candidates decodes a pool of stored resumes. Records that cannot be decoded
// are logged and skipped; the number skipped is returned.
func (p *Parser) Candidates(records []CandidateRecord) ([]types.CandidateProfile, int) {
	candidates := make([]types.CandidateProfile, 0, len(records))
	skipped := 0
	for _, rec := range records {
		candidate, err := p.Candidate(rec)
		if err != nil {
			skipped++
			p.logger.Warn("skipping candidate", zap.String("user_id", rec.UserID), zap.Error(err))
			continue
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, skipped
}

// Project decodes a stored project. A missing project type becomes hackathon.
func (p *Parser) Project(rec ProjectRecord) (*types.ProjectProfile, error) {
	payload, err := p.decodePayload(schemas.ProjectPayload, rec.ProjectID, rec.ParsedJSON)
	if err != nil {
		return nil, err
	}

	project := &types.ProjectProfile{
		ID:            rec.ProjectID,
		Title:         text(payload["title"]),
		Description:   text(payload["description"]),
		ProjectType:   types.ParseProjectType(text(payload["project_type"])),
		PreferredYear: year(payload["preferred_year"]),
		Embedding:     rec.Embedding,
	}
	if project.ID == "" {
		project.ID = text(payload["project_id"])
	}
	project.RequiredSkills, _ = stringList(payload["required_skills"])
	project.PreferredTechnologies, _ = stringList(payload["preferred_technologies"])
	project.Domains, _ = stringList(payload["domains"])
	if size, ok := number(payload["team_size"]); ok && size > 0 {
		project.TeamSize = int(size)
	}

	if err := p.validate.Struct(project); err != nil {
		return nil, &ValidationError{Message: "project has no project_id", Cause: err}
	}
	return project, nil
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > reputation.MaxRating:
		return reputation.MaxRating
	}
	return r
}
