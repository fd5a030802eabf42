// internal/models/match.go
package models

import "time"

// Match is a persisted founder/funder score.
type Match struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FounderID string `json:"founder_id"`
	FunderID  string `json:"funder_id"`

	SemanticScore float64 `json:"semantic_score"`
	RuleScore     float64 `json:"rule_score"`
	StageScore    float64 `json:"stage_score"`
	TotalScore    float64 `json:"total_score"`

	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`

	QualityTier QualityTier `json:"quality_tier"`
	IsViewed    bool        `json:"is_viewed"`
	ViewedAt    *time.Time  `json:"viewed_at,omitempty"`
}

// NewMatch flattens a breakdown into a match row.
func NewMatch(founderID, funderID string, b ScoreBreakdown) Match {
	return Match{
		FounderID:      founderID,
		FunderID:       funderID,
		SemanticScore:  b.Semantic.Score,
		RuleScore:      b.Rule.Score,
		StageScore:     b.Stage.Score,
		TotalScore:     b.TotalScore,
		ScoreBreakdown: b,
		QualityTier:    b.QualityTier,
	}
}

// MatchStats summarises the stored matches of one founder.
type MatchStats struct {
	TotalMatches   int     `json:"total_matches"`
	ExcellentCount int     `json:"excellent_count"`
	GoodCount      int     `json:"good_count"`
	FairCount      int     `json:"fair_count"`
	PoorCount      int     `json:"poor_count"`
	AvgScore       float64 `json:"avg_score"`
}

// SimilarFunder is a candidate returned by a nearest-neighbour search.
type SimilarFunder struct {
	Funder        Funder  `json:"funder"`
	SemanticScore float64 `json:"semantic_score"`
	Distance      float64 `json:"distance"`
}
