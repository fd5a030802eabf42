// internal/workers/matching/find-similar-funders/models.go
package findsimilarfunders

import "phalanx-matcher/internal/matching"

type Input struct {
	FounderID string `json:"founderId"`
	Limit     int    `json:"limit,omitempty"`
}

// Output carries candidates without their embeddings to keep process
// variables small.
type Output struct {
	FounderID  string                    `json:"founderId"`
	Candidates []matching.CandidateInput `json:"candidates"`
	TotalFound int                       `json:"totalFound"`
}
