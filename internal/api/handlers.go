// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     Version,
		Environment: s.deps.Environment,
	}

	status := http.StatusOK
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			s.logger.Warn("health check failed", map[string]interface{}{"error": err})
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	check := s.deps.Ready
	if check == nil {
		check = s.deps.Health
	}
	if check != nil {
		if err := check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, _ *http.Request) {
	weights := s.deps.Matching.Weights
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "Phalanx Matching Engine API",
		"version":     Version,
		"description": "Founder-funder matching with hybrid scoring",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"match":         "GET /match/{founderId}?limit=10&minScore=0.5&qualityTier=Good",
			"matchRules":    "GET /match-rules/{founderId}?limit=10&minScore=0.3",
			"ingest":        "POST /ingest/founder",
			"storedMatches": "GET /founders/{founderId}/matches",
			"markViewed":    "POST /matches/{matchId}/viewed",
			"metrics":       "GET /metrics",
		},
		"algorithm": map[string]string{
			"semantic": percentLabel(weights.Semantic) + " - embedding cosine similarity",
			"rule":     percentLabel(weights.Rule) + " - industry, check size, geography, completeness",
			"stage":    percentLabel(weights.Stage) + " - exact/adjacent stage matching",
		},
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	m := s.deps.Matching
	params, err := parseMatchParams(r.URL.Query(), m.DefaultLimit, m.MaxLimit, m.DefaultMinScore)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Matcher.Match(r.Context(), chi.URLParam(r, "founderId"), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMatchResponse(res))
}

func (s *Server) handleMatchRules(w http.ResponseWriter, r *http.Request) {
	m := s.deps.Matching
	params, err := parseMatchParams(r.URL.Query(), m.DefaultLimit, m.MaxLimit, m.RuleOnlyMinScore)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Matcher.MatchRules(r.Context(), chi.URLParam(r, "founderId"), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMatchResponse(res))
}

func (s *Server) handleIngestFounder(w http.ResponseWriter, r *http.Request) {
	var input models.FounderProfileInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		writeError(w, apperrors.NewInvalidInputError("request body: "+err.Error()))
		return
	}

	res, err := s.deps.Ingestor.Ingest(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleStoredMatches(w http.ResponseWriter, r *http.Request) {
	founderID := chi.URLParam(r, "founderId")
	params, err := parseMatchParams(r.URL.Query(), s.deps.Matching.MaxLimit, s.deps.Matching.MaxLimit, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	matches, err := s.deps.Matches.ListForFounder(r.Context(), founderID, params.MinScore, params.Limit)
	if err != nil {
		writeError(w, apperrors.NewQueryExecutionFailedError("list_matches", err))
		return
	}
	stats, err := s.deps.Matches.Stats(r.Context(), founderID)
	if err != nil {
		writeError(w, apperrors.NewQueryExecutionFailedError("match_stats", err))
		return
	}

	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, StoredMatchesResponse{FounderID: founderID, Matches: matches, Stats: stats})
}

func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")
	if err := s.deps.Matches.MarkViewed(r.Context(), matchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, apperrors.NewMatchNotFoundError(matchID))
			return
		}
		writeError(w, apperrors.NewQueryExecutionFailedError("mark_viewed", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func percentLabel(w float64) string {
	return strconv.Itoa(int(w*100+0.5)) + "%"
}
