// internal/matching/semantic.go
package matching

import (
	"gonum.org/v1/gonum/floats"
)

const (
	ReasonEmbeddingsMissing = "Embeddings not available"

	reasonSemanticExceptional = "Exceptional semantic alignment in business model and investment focus"
	reasonSemanticStrong      = "Strong alignment in investment thesis and company description"
	reasonSemanticGood        = "Good thematic overlap between founder and funder"
	reasonSemanticModerate    = "Moderate semantic relevance"
	reasonSemanticLimited     = "Limited semantic connection between profiles"

	// missingDistance is reported when no similarity could be computed.
	missingDistance = 2.0
)

// SemanticResult is the semantic branch before weighting.
type SemanticResult struct {
	Score     float64 `json:"score"`
	Distance  float64 `json:"distance"`
	Reasoning string  `json:"reasoning"`
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is zero.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, dimensionMismatch(len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return floats.Dot(a, b) / (normA * normB), nil
}

// SemanticScore compares two embeddings. Missing vectors degrade to a zero
// score, mismatched lengths are rejected.
func SemanticScore(a, b []float64) (SemanticResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return SemanticResult{Score: 0, Distance: missingDistance, Reasoning: ReasonEmbeddingsMissing}, nil
	}
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return SemanticResult{}, err
	}
	return SemanticResult{
		Score:     clamp01(sim),
		Distance:  1 - sim,
		Reasoning: semanticReasoning(sim),
	}, nil
}

// PrecomputedSemanticScore wraps a similarity returned by a vector index.
func PrecomputedSemanticScore(sim float64) SemanticResult {
	return SemanticResult{
		Score:     clamp01(sim),
		Distance:  1 - sim,
		Reasoning: semanticReasoning(sim),
	}
}

// PrepareVector returns a unit-length copy of v. Cosine similarity between
// prepared vectors equals their dot product.
func PrepareVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	norm := floats.Norm(out, 2)
	if norm == 0 {
		return out
	}
	floats.Scale(1/norm, out)
	return out
}

func semanticReasoning(sim float64) string {
	switch {
	case sim >= 0.9:
		return reasonSemanticExceptional
	case sim >= 0.8:
		return reasonSemanticStrong
	case sim >= 0.7:
		return reasonSemanticGood
	case sim >= 0.5:
		return reasonSemanticModerate
	default:
		return reasonSemanticLimited
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
