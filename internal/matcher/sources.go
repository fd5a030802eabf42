// internal/matcher/sources.go
package matcher

import (
	"context"

	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"
)

// CandidateSource returns the funders nearest to a founder, best first.
type CandidateSource interface {
	FindCandidates(ctx context.Context, founder *models.Founder, limit int) ([]models.SimilarFunder, error)
}

// PgvectorSource asks Postgres through find_matching_funders.
type PgvectorSource struct {
	Funders *repository.FunderRepository
}

func (s PgvectorSource) FindCandidates(ctx context.Context, founder *models.Founder, limit int) ([]models.SimilarFunder, error) {
	return s.Funders.FindSimilar(ctx, founder.ID, limit)
}

// ElasticsearchSource runs a kNN query on the funder index and loads the
// hits from Postgres.
type ElasticsearchSource struct {
	Index   *repository.FunderIndex
	Funders *repository.FunderRepository
}

func (s ElasticsearchSource) FindCandidates(ctx context.Context, founder *models.Founder, limit int) ([]models.SimilarFunder, error) {
	hits, err := s.Index.Search(ctx, founder.Embedding, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.FunderID
	}
	funders, err := s.Funders.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.SimilarFunder, 0, len(hits))
	for _, h := range hits {
		f, ok := funders[h.FunderID]
		if !ok || !f.IsActive {
			continue
		}
		out = append(out, models.SimilarFunder{Funder: f, SemanticScore: h.Similarity, Distance: 1 - h.Similarity})
	}
	return out, nil
}
