// internal/matching/scorer.go
package matching

import (
	"runtime"

	"phalanx-matcher/internal/models"
)

// Scorer computes hybrid founder/funder scores. It holds no mutable state and
// is safe for concurrent use.
type Scorer struct {
	cfg         Config
	concurrency int
}

// NewScorer validates cfg and returns a scorer bound to it.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, concurrency: runtime.GOMAXPROCS(0)}, nil
}

// NewDefaultScorer returns a scorer over DefaultConfig.
func NewDefaultScorer() *Scorer {
	return &Scorer{cfg: DefaultConfig(), concurrency: runtime.GOMAXPROCS(0)}
}

// SetConcurrency bounds the goroutines used by ScoreCandidates.
func (s *Scorer) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// QualityTierFor maps a total score onto a tier with the scorer's thresholds.
func (s *Scorer) QualityTierFor(total float64) models.QualityTier {
	return s.cfg.TierThresholds.Tier(total)
}

// QualityTierFor maps a total score onto a tier with the default thresholds.
func QualityTierFor(total float64) models.QualityTier {
	return DefaultConfig().TierThresholds.Tier(total)
}

// Score builds the full breakdown for one pair. semantic, when non-nil, is a
// similarity already computed by a vector index and is used as is. The only
// error is a dimension mismatch between the two embeddings.
func (s *Scorer) Score(founder *models.Founder, funder *models.Funder, semantic *float64) (models.ScoreBreakdown, error) {
	var sem SemanticResult
	switch {
	case semantic != nil:
		sem = PrecomputedSemanticScore(*semantic)
	case founder.HasEmbedding() && funder.HasEmbedding():
		var err error
		sem, err = SemanticScore(founder.Embedding, funder.Embedding)
		if err != nil {
			return models.ScoreBreakdown{}, err
		}
	default:
		sem = SemanticResult{Score: 0, Distance: missingDistance, Reasoning: ReasonEmbeddingsMissing}
	}

	rule := s.cfg.RuleScore(founder, funder)
	stage := s.cfg.StageScore(founder.Stage, funder.PreferredStages)

	w := s.cfg.Weights
	total := weightedTotal(w, sem.Score, rule.Score, stage.Score)

	// Contributions are rounded for display only; the tier follows total.
	semContribution := round(sem.Score*w.Semantic, 4)
	ruleContribution := round(rule.Score*w.Rule, 4)
	stageContribution := round(stage.Score*w.Stage, 4)

	return models.ScoreBreakdown{
		Semantic: models.BranchScore{
			Score:        round(sem.Score, 4),
			Weight:       w.Semantic,
			Contribution: semContribution,
			Reasoning:    sem.Reasoning,
		},
		Rule: models.RuleBranch{
			Score:        rule.Score,
			Weight:       w.Rule,
			Contribution: ruleContribution,
			Breakdown:    rule.Breakdown,
		},
		Stage: models.BranchScore{
			Score:        round(stage.Score, 4),
			Weight:       w.Stage,
			Contribution: stageContribution,
			Reasoning:    stage.Reasoning,
		},
		TotalScore:  total,
		QualityTier: s.QualityTierFor(total),
	}, nil
}

// weightedTotal sums the unrounded branch contributions and rounds once.
func weightedTotal(w Weights, semantic, rule, stage float64) float64 {
	return round(semantic*w.Semantic+rule*w.Rule+stage*w.Stage, 4)
}
