package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/db"
	"github.com/jonathan/collab-matcher/internal/ingestion"
	"github.com/jonathan/collab-matcher/internal/matching"
	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/server/middleware"
	"github.com/jonathan/collab-matcher/internal/types"
)

const maxBodyBytes = 16 << 20

// MatchRequest is the body of POST /match. The project is either a stored
// project_id or an inline project record; candidates default to every stored resume.
type MatchRequest struct {
	ProjectID  string                      `json:"project_id,omitempty"`
	Project    *ingestion.ProjectRecord    `json:"project,omitempty"`
	Candidates []ingestion.CandidateRecord `json:"candidates,omitempty"`
	TopK       int                         `json:"top_k,omitempty"`
	Threshold  *float64                    `json:"threshold,omitempty"`
	// Save stores the response as a match run
	Save bool `json:"save,omitempty"`
}

// MatchResponse is a match result with the stored run ID when the run was saved
type MatchResponse struct {
	RunID string `json:"run_id,omitempty"`
	*types.MatchResponse
}

// RatingRequest is the body of POST /ratings; the rater is the authenticated collaborator
type RatingRequest struct {
	RateeID        string             `json:"ratee_id"`
	ProjectID      string             `json:"project_id"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// ReputationResponse is the body of GET /reputation/{id}
type ReputationResponse struct {
	CandidateID string `json:"user_id"`
	reputation.Rating
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// handleMatch ranks candidates against a stored or inline project
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorFor(w, err)
		return
	}
	if (req.ProjectID == "") == (req.Project == nil) {
		s.errorFor(w, &ErrValidation{Field: "project", Message: "exactly one of project_id or project is required"})
		return
	}

	ctx := r.Context()
	if s.deps.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Deadline)
		defer cancel()
	}

	projectRec := req.Project
	if req.ProjectID != "" {
		rec, err := s.deps.Store.GetProject(ctx, req.ProjectID)
		if err != nil {
			s.errorFor(w, err)
			return
		}
		if rec == nil {
			s.errorFor(w, &matching.RequestError{Kind: matching.KindNotFound, Message: fmt.Sprintf("project %s not found", req.ProjectID)})
			return
		}
		projectRec = rec
	}

	project, err := s.parser.Project(*projectRec)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	records := req.Candidates
	if records == nil {
		records, err = s.deps.Store.ListResumes(ctx)
		if err != nil {
			s.errorFor(w, err)
			return
		}
	}
	candidates, skipped := s.parser.Candidates(records)

	resp, err := s.deps.Engine.Match(ctx, matching.Request{
		Project:    project,
		Candidates: candidates,
		TopK:       req.TopK,
		Threshold:  req.Threshold,
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if skipped > 0 {
		s.logger.Warn("skipped undecodable candidates",
			zap.String("request_id", resp.Summary.RequestID),
			zap.Int("skipped", skipped),
		)
	}

	out := MatchResponse{MatchResponse: resp}
	if req.Save {
		id, err := s.deps.Store.SaveMatchRun(ctx, resp)
		if err != nil {
			s.errorFor(w, err)
			return
		}
		out.RunID = id.String()
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleReputation returns a candidate's smoothed rating
func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rating, err := s.deps.Reputation.GlobalRating(r.Context(), id)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ReputationResponse{CandidateID: id, Rating: rating})
}

// handleRating records a peer rating from the authenticated collaborator
func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	raterID, err := middleware.CollaboratorID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req RatingRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorFor(w, err)
		return
	}

	rating, err := reputation.Submit(r.Context(), s.deps.Store, reputation.Submission{
		RaterID:        raterID,
		RateeID:        req.RateeID,
		ProjectID:      req.ProjectID,
		CategoryScores: req.CategoryScores,
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Invalidate(r.Context(), rating.RateeID); err != nil {
			s.logger.Warn("stale rating may be served until the cache expires", zap.Error(err))
		}
	}
	s.jsonResponse(w, http.StatusCreated, rating)
}

// handleGetRun returns a stored match run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "id", Message: "invalid run ID"})
		return
	}

	run, err := s.deps.Store.GetMatchRun(r.Context(), id)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("match run %s not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleListRuns lists the most recent runs of a project
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			s.errorFor(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	runs, err := s.deps.Store.ListMatchRuns(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if runs == nil {
		runs = []db.MatchRun{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}
