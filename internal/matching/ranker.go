// internal/matching/ranker.go
package matching

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"phalanx-matcher/internal/models"
)

// CandidateInput is a funder to score, optionally with a similarity already
// returned by a vector search.
type CandidateInput struct {
	Funder        models.Funder `json:"funder"`
	SemanticScore *float64      `json:"semantic_score,omitempty"`
}

// Candidate is a scored funder.
type Candidate struct {
	Funder        models.Funder         `json:"funder"`
	SemanticScore *float64              `json:"semantic_score,omitempty"`
	Breakdown     models.ScoreBreakdown `json:"score_breakdown"`
}

func (c Candidate) TotalScore() float64 {
	return c.Breakdown.TotalScore
}

// ScoreCandidates scores every input against founder in parallel. The result
// keeps the input order.
func (s *Scorer) ScoreCandidates(ctx context.Context, founder *models.Founder, inputs []CandidateInput) ([]Candidate, error) {
	out := make([]Candidate, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := inputs[i]
			b, err := s.Score(founder, &in.Funder, in.SemanticScore)
			if err != nil {
				return err
			}
			out[i] = Candidate{Funder: in.Funder, SemanticScore: in.SemanticScore, Breakdown: b}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rank keeps candidates scoring at least minScore, sorts them by total
// descending and truncates to limit. Equal totals keep their input order. A
// limit of zero or less disables truncation. candidates is not modified.
func Rank(candidates []Candidate, minScore float64, limit int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Breakdown.TotalScore >= minScore {
			ranked = append(ranked, c)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Breakdown.TotalScore > ranked[j].Breakdown.TotalScore
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// FilterByTier keeps candidates of the given tier. An empty tier keeps all.
func FilterByTier(candidates []Candidate, tier models.QualityTier) []Candidate {
	if tier == "" {
		return candidates
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Breakdown.QualityTier == tier {
			out = append(out, c)
		}
	}
	return out
}
