// internal/workers/matching/ingest-founder/models.go
package ingestfounder

import "phalanx-matcher/internal/models"

type Input struct {
	FounderProfile models.FounderProfileInput `json:"founderProfile"`
}

type Output struct {
	FounderID           string  `json:"founderId"`
	EmbeddingGenerated  bool    `json:"embeddingGenerated"`
	ProfileCompleteness float64 `json:"profileCompleteness"`
	CreatedAt           string  `json:"createdAt"`
}
