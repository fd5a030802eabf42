// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import (
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
)

// Input names the founder by id or carries the profile inline. An inline
// profile wins.
type Input struct {
	FounderID  string                    `json:"founderId"`
	Founder    *models.Founder           `json:"founder,omitempty"`
	Candidates []matching.CandidateInput `json:"candidates"`
}

type Output struct {
	FounderID     string               `json:"founderId"`
	ScoredMatches []matching.Candidate `json:"scoredMatches"`
	ScoredCount   int                  `json:"scoredCount"`
}
