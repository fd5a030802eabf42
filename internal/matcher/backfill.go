// internal/matcher/backfill.go
package matcher

import (
	"context"
	"fmt"

	"phalanx-matcher/internal/common/embeddings"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/models"
)

type FounderBackfillStore interface {
	ListWithoutEmbedding(ctx context.Context, limit int) ([]models.Founder, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float64, text string) error
}

type FunderBackfillStore interface {
	ListActive(ctx context.Context) ([]models.Funder, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float64, text string) error
}

// FounderInvalidator drops cached founder profiles.
type FounderInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

type FunderIndexer interface {
	IndexFunder(ctx context.Context, f *models.Funder) error
}

// BackfillStats counts what one backfill run did.
type BackfillStats struct {
	FoundersEmbedded int `json:"founders_embedded"`
	FundersEmbedded  int `json:"funders_embedded"`
	FundersIndexed   int `json:"funders_indexed"`
	Failures         int `json:"failures"`
}

// Backfiller embeds profiles stored without a vector and pushes funders into
// the search index. Cache and Index are optional.
type Backfiller struct {
	Founders FounderBackfillStore
	Funders  FunderBackfillStore
	Embedder embeddings.Embedder
	Cache    FounderInvalidator
	Index    FunderIndexer
	Logger   logger.Logger
}

// BackfillFounders embeds up to limit founders. A failed founder is logged and
// counted, the run continues.
func (b *Backfiller) BackfillFounders(ctx context.Context, limit int, stats *BackfillStats) error {
	founders, err := b.Founders.ListWithoutEmbedding(ctx, limit)
	if err != nil {
		return fmt.Errorf("list founders: %w", err)
	}

	for i := range founders {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := &founders[i]
		vec, text, err := embeddings.EmbedFounder(ctx, b.Embedder, f)
		if err == nil {
			err = b.Founders.UpdateEmbedding(ctx, f.ID, vec, text)
		}
		if err != nil {
			stats.Failures++
			b.Logger.Warn("founder backfill failed", map[string]interface{}{"founderId": f.ID, "error": err})
			continue
		}
		stats.FoundersEmbedded++

		if b.Cache != nil {
			if err := b.Cache.Invalidate(ctx, f.ID); err != nil {
				b.Logger.Warn("founder cache invalidation failed", map[string]interface{}{"founderId": f.ID, "error": err})
			}
		}
	}
	return nil
}

// BackfillFunders embeds active funders lacking a vector and, when an index
// is configured, upserts every embedded funder into it.
func (b *Backfiller) BackfillFunders(ctx context.Context, stats *BackfillStats) error {
	funders, err := b.Funders.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list funders: %w", err)
	}

	for i := range funders {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := &funders[i]

		if !f.HasEmbedding() {
			vec, text, err := embeddings.EmbedFunder(ctx, b.Embedder, f)
			if err == nil {
				err = b.Funders.UpdateEmbedding(ctx, f.ID, vec, text)
			}
			if err != nil {
				stats.Failures++
				b.Logger.Warn("funder backfill failed", map[string]interface{}{"funderId": f.ID, "error": err})
				continue
			}
			f.Embedding, f.EmbeddingText = vec, text
			stats.FundersEmbedded++
		}

		if b.Index == nil {
			continue
		}
		if err := b.Index.IndexFunder(ctx, f); err != nil {
			stats.Failures++
			b.Logger.Warn("funder indexing failed", map[string]interface{}{"funderId": f.ID, "error": err})
			continue
		}
		stats.FundersIndexed++
	}
	return nil
}

// Run backfills founders then funders.
func (b *Backfiller) Run(ctx context.Context, founderLimit int) (BackfillStats, error) {
	var stats BackfillStats
	if err := b.BackfillFounders(ctx, founderLimit, &stats); err != nil {
		return stats, err
	}
	if err := b.BackfillFunders(ctx, &stats); err != nil {
		return stats, err
	}

	b.Logger.Info("backfill finished", map[string]interface{}{
		"foundersEmbedded": stats.FoundersEmbedded,
		"fundersEmbedded":  stats.FundersEmbedded,
		"fundersIndexed":   stats.FundersIndexed,
		"failures":         stats.Failures,
	})
	return stats, nil
}
