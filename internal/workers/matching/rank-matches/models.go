// internal/workers/matching/rank-matches/models.go
package rankmatches

import "phalanx-matcher/internal/matching"

// Input carries scored candidates. Nil MinScore falls back to the configured
// default, a zero Limit to the default limit.
type Input struct {
	Candidates  []matching.Candidate `json:"scoredMatches"`
	Limit       int                  `json:"limit,omitempty"`
	MinScore    *float64             `json:"minScore,omitempty"`
	QualityTier string               `json:"qualityTier,omitempty"`
}

type Output struct {
	RankedMatches []matching.Candidate `json:"rankedMatches"`
	TotalResults  int                  `json:"totalResults"`
	TopScore      float64              `json:"topScore"`
}
