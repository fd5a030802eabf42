// internal/common/embeddings/text.go
package embeddings

import (
	"fmt"
	"strconv"
	"strings"

	"phalanx-matcher/internal/models"
)

// FounderEmbeddingText builds the text embedded for a founder profile:
// "{description or company}. Industry: X. Stage: Y. Seeking: $ak-$bk."
func FounderEmbeddingText(f *models.Founder) string {
	var parts []string

	if f.CompanyDescription != "" {
		parts = append(parts, f.CompanyDescription)
	} else if f.CompanyName != "" {
		parts = append(parts, f.CompanyName)
	}
	if f.Industry != "" {
		parts = append(parts, "Industry: "+string(f.Industry))
	}
	if f.Stage != "" {
		parts = append(parts, "Stage: "+string(f.Stage))
	}
	if positive(f.SeekingAmountMin) && positive(f.SeekingAmountMax) {
		parts = append(parts, fmt.Sprintf("Seeking: $%sk-$%sk", thousands(*f.SeekingAmountMin), thousands(*f.SeekingAmountMax)))
	}

	return strings.Join(parts, ". ") + "."
}

// FunderEmbeddingText builds the text embedded for a funder profile:
// "{thesis}. {bio}. Focus: industries. Stages: stages. Check size: $ak-$bk."
func FunderEmbeddingText(f *models.Funder) string {
	var parts []string

	if f.InvestmentThesis != "" {
		parts = append(parts, f.InvestmentThesis)
	}
	if f.Bio != "" {
		parts = append(parts, f.Bio)
	}
	if len(f.PreferredIndustries) > 0 {
		parts = append(parts, "Focus: "+joinValues(f.PreferredIndustries))
	}
	if len(f.PreferredStages) > 0 {
		parts = append(parts, "Stages: "+joinValues(f.PreferredStages))
	}
	if positive(f.CheckSizeMin) && positive(f.CheckSizeMax) {
		parts = append(parts, fmt.Sprintf("Check size: $%sk-$%sk", thousands(*f.CheckSizeMin), thousands(*f.CheckSizeMax)))
	}

	return strings.Join(parts, ". ") + "."
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func thousands(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
