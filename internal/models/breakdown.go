// internal/models/breakdown.go
package models

// SubScore is one leaf of the rule breakdown.
type SubScore struct {
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Reasoning string  `json:"reasoning"`
}

// RuleScoreBreakdown holds the four rule leaves.
type RuleScoreBreakdown struct {
	IndustryMatch SubScore `json:"industry_match"`
	CheckSize     SubScore `json:"check_size"`
	Geography     SubScore `json:"geography"`
	Completeness  SubScore `json:"completeness"`
}

// BranchScore is a top-level branch explained by a reasoning string.
type BranchScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Reasoning    string  `json:"reasoning"`
}

// RuleBranch is the top-level rule branch with its nested leaves.
type RuleBranch struct {
	Score        float64            `json:"score"`
	Weight       float64            `json:"weight"`
	Contribution float64            `json:"contribution"`
	Breakdown    RuleScoreBreakdown `json:"breakdown"`
}

// ScoreBreakdown is the audit trail behind one founder/funder total score.
type ScoreBreakdown struct {
	Semantic    BranchScore `json:"semantic"`
	Rule        RuleBranch  `json:"rule"`
	Stage       BranchScore `json:"stage"`
	TotalScore  float64     `json:"total_score"`
	QualityTier QualityTier `json:"quality_tier"`
}

// ContributionSum recomputes the total from the three branches.
func (b ScoreBreakdown) ContributionSum() float64 {
	return b.Semantic.Contribution + b.Rule.Contribution + b.Stage.Contribution
}

// WeightSum adds up the three top-level weights.
func (b ScoreBreakdown) WeightSum() float64 {
	return b.Semantic.Weight + b.Rule.Weight + b.Stage.Weight
}
