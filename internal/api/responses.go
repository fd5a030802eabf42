// internal/api/responses.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/models"
)

type FounderSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
}

type Scores struct {
	TotalScore    float64            `json:"total_score"`
	SemanticScore float64            `json:"semantic_score"`
	RuleScore     float64            `json:"rule_score"`
	StageScore    float64            `json:"stage_score"`
	QualityTier   models.QualityTier `json:"quality_tier"`
}

// MatchResult is one ranked funder with its scores and full breakdown.
type MatchResult struct {
	Funder    models.FunderSummary  `json:"funder"`
	Scores    Scores                `json:"scores"`
	Reasoning models.ScoreBreakdown `json:"reasoning"`
}

type MatchResponse struct {
	Founder      FounderSummary `json:"founder"`
	Matches      []MatchResult  `json:"matches"`
	TotalResults int            `json:"total_results"`
	GeneratedAt  string         `json:"generated_at"`
	Note         string         `json:"note,omitempty"`
}

type StoredMatchesResponse struct {
	FounderID string            `json:"founder_id"`
	Matches   []models.Match    `json:"matches"`
	Stats     models.MatchStats `json:"stats"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func newMatchResponse(res *matcher.Result) MatchResponse {
	matches := make([]MatchResult, len(res.Matches))
	for i, c := range res.Matches {
		b := c.Breakdown
		matches[i] = MatchResult{
			Funder: c.Funder.Summary(),
			Scores: Scores{
				TotalScore:    b.TotalScore,
				SemanticScore: b.Semantic.Score,
				RuleScore:     b.Rule.Score,
				StageScore:    b.Stage.Score,
				QualityTier:   b.QualityTier,
			},
			Reasoning: b,
		}
	}

	return MatchResponse{
		Founder: FounderSummary{
			ID:          res.Founder.ID,
			Name:        res.Founder.Name,
			CompanyName: res.Founder.CompanyName,
		},
		Matches:      matches,
		TotalResults: len(matches),
		GeneratedAt:  res.GeneratedAt.Format(time.RFC3339),
		Note:         res.Note,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an ErrorResponse. Errors that are not a
// StandardError are reported as INTERNAL_ERROR without their text.
func writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	resp := ErrorResponse{
		Error:   string(stdErr.Code),
		Message: stdErr.Message,
		Status:  status,
	}
	if status < http.StatusInternalServerError {
		details := map[string]interface{}{}
		if stdErr.Details != "" {
			details["reason"] = stdErr.Details
		}
		for k, v := range stdErr.Metadata {
			details[k] = v
		}
		if len(details) > 0 {
			resp.Details = details
		}
	}
	writeJSON(w, status, resp)
}
