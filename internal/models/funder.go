// internal/models/funder.go
package models

import "time"

// Funder is an investor. Check sizes are in thousands.
type Funder struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name             string `json:"name"`
	FirmName         string `json:"firm_name"`
	Bio              string `json:"bio,omitempty"`
	InvestmentThesis string `json:"investment_thesis,omitempty"`

	PreferredIndustries []Industry  `json:"preferred_industries"`
	PreferredStages     []Stage     `json:"preferred_stages"`
	CheckSizeMin        *float64    `json:"check_size_min,omitempty"`
	CheckSizeMax        *float64    `json:"check_size_max,omitempty"`
	GeographyFocus      []Geography `json:"geography_focus"`

	Embedding     []float64 `json:"embedding,omitempty"`
	EmbeddingText string    `json:"embedding_text,omitempty"`

	IsActive              bool `json:"is_active"`
	TotalMatchesGenerated int  `json:"total_matches_generated"`
}

func (f *Funder) HasEmbedding() bool {
	return f != nil && len(f.Embedding) > 0
}

// InvestsGlobally is true when the geography focus places no restriction.
func (f *Funder) InvestsGlobally() bool {
	if len(f.GeographyFocus) == 0 {
		return true
	}
	for _, g := range f.GeographyFocus {
		if g == GeographyGlobal {
			return true
		}
	}
	return false
}

// FunderSummary is the slice of a funder exposed in match responses.
type FunderSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FirmName string `json:"firm_name"`
	Bio      string `json:"bio,omitempty"`
}

func (f *Funder) Summary() FunderSummary {
	return FunderSummary{ID: f.ID, Name: f.Name, FirmName: f.FirmName, Bio: f.Bio}
}
