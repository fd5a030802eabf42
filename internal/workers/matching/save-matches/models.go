// internal/workers/matching/save-matches/models.go
package savematches

import "phalanx-matcher/internal/matching"

type Input struct {
	FounderID string               `json:"founderId"`
	Matches   []matching.Candidate `json:"rankedMatches"`
}

type Output struct {
	SavedCount int      `json:"savedCount"`
	MatchIDs   []string `json:"matchIds"`
}
