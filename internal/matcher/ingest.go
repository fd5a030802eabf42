// internal/matcher/ingest.go
package matcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"phalanx-matcher/internal/common/embeddings"
	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/validation"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"
)

type FounderCreator interface {
	Create(ctx context.Context, f *models.Founder) (*models.Founder, error)
}

// IngestResult is returned after a founder profile has been stored.
type IngestResult struct {
	ID                  string    `json:"id"`
	EmbeddingGenerated  bool      `json:"embedding_generated"`
	ProfileCompleteness float64   `json:"profile_completeness"`
	CreatedAt           time.Time `json:"created_at"`
}

// Ingestor validates, embeds and stores new founder profiles.
type Ingestor struct {
	scorer   *matching.Scorer
	founders FounderCreator
	embedder embeddings.Embedder
	logger   logger.Logger
}

// NewIngestor builds an Ingestor. A nil embedder stores founders without
// an embedding.
func NewIngestor(scorer *matching.Scorer, founders FounderCreator, embedder embeddings.Embedder, log logger.Logger) *Ingestor {
	return &Ingestor{
		scorer:   scorer,
		founders: founders,
		embedder: embedder,
		logger:   log.WithFields(map[string]interface{}{"component": "ingest"}),
	}
}

// Ingest stores a founder profile. Embedding failures are logged and the
// founder is stored without a vector so it can be embedded later.
func (i *Ingestor) Ingest(ctx context.Context, input models.FounderProfileInput) (*IngestResult, error) {
	if result := validation.ValidateInput(input, validation.FounderProfileSchema()); !result.Valid {
		return nil, apperrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("validationErrors", result.Errors)
	}

	founder := input.ToFounder()
	if err := founder.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	founder.ProfileCompleteness = i.scorer.Config().CompletenessScore(founder).Score

	embedded := false
	if i.embedder != nil {
		vec, text, err := embeddings.EmbedFounder(ctx, i.embedder, founder)
		if err != nil {
			i.logger.Warn("failed to generate embedding, storing founder without one", map[string]interface{}{
				"email": founder.Email,
				"error": err,
			})
		} else {
			founder.Embedding = vec
			founder.EmbeddingText = text
			embedded = true
		}
	}

	created, err := i.founders.Create(ctx, founder)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateFounderError(founder.Email)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	i.logger.Info("founder ingested", map[string]interface{}{
		"founderId":           created.ID,
		"embeddingGenerated":  embedded,
		"profileCompleteness": created.ProfileCompleteness,
	})

	return &IngestResult{
		ID:                  created.ID,
		EmbeddingGenerated:  embedded,
		ProfileCompleteness: created.ProfileCompleteness,
		CreatedAt:           created.CreatedAt,
	}, nil
}
