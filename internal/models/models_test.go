// internal/models/models_test.go
package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Enums
// ==========================

func TestEnumValidation(t *testing.T) {
	assert.True(t, IsValidIndustry("Enterprise SaaS"))
	assert.False(t, IsValidIndustry("enterprise saas"))
	assert.True(t, IsValidStage("Series B+"))
	assert.False(t, IsValidStage("Series C"))
	assert.True(t, IsValidGeography("North America"))
	assert.False(t, IsValidGeography(""))
	assert.True(t, IsValidQualityTier("Fair"))
	assert.False(t, IsValidQualityTier("Great"))

	assert.Len(t, Industries(), 10)
	assert.Equal(t, []Stage{StagePreSeed, StageSeed, StageSeriesA, StageSeriesBP}, Stages())
	assert.Len(t, Geographies(), 8)
	assert.Equal(t, []QualityTier{TierExcellent, TierGood, TierFair, TierPoor}, QualityTiers())
}

func TestEnumListsAreCopies(t *testing.T) {
	stages := Stages()
	stages[0] = "mutated"
	assert.Equal(t, StagePreSeed, Stages()[0])
}

func TestGetTierInfo(t *testing.T) {
	assert.Equal(t, "#10B981", GetTierInfo(TierExcellent).Color)
	assert.Equal(t, GetTierInfo(TierPoor), GetTierInfo("unknown"))
}

// ==========================
// Founder
// ==========================

func validFounder() *Founder {
	return &Founder{
		Name:             "Ada",
		Email:            "ada@example.com",
		Industry:         IndustryFintech,
		Stage:            StageSeed,
		SeekingAmountMin: Float(100),
		SeekingAmountMax: Float(500),
		Geography:        GeographyEurope,
	}
}

func TestFounderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Founder)
		wantErr string
	}{
		{"valid", func(f *Founder) {}, ""},
		{"no geography", func(f *Founder) { f.Geography = "" }, ""},
		{"open range", func(f *Founder) { f.SeekingAmountMax = nil }, ""},
		{"zero amounts", func(f *Founder) { f.SeekingAmountMin, f.SeekingAmountMax = Float(0), Float(0) }, ""},
		{"bad industry", func(f *Founder) { f.Industry = "Crypto" }, "unknown industry"},
		{"bad stage", func(f *Founder) { f.Stage = "" }, "unknown stage"},
		{"bad geography", func(f *Founder) { f.Geography = "Mars" }, "unknown geography"},
		{"negative min", func(f *Founder) { f.SeekingAmountMin = Float(-1) }, "seeking_amount_min is negative"},
		{"inverted range", func(f *Founder) { f.SeekingAmountMin = Float(600) }, "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFounder()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFounder))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var nilFounder *Founder
	assert.ErrorIs(t, nilFounder.Validate(), ErrInvalidFounder)
}

func TestFounderProfileInput_ToFounder(t *testing.T) {
	in := FounderProfileInput{
		Name:             "Ada",
		Email:            "ada@example.com",
		Industry:         IndustryHealthTech,
		Stage:            StageSeriesA,
		SeekingAmountMin: Float(1000),
		Geography:        GeographyAsia,
	}

	f := in.ToFounder()
	assert.True(t, f.IsActive)
	assert.Equal(t, IndustryHealthTech, f.Industry)
	assert.Equal(t, 1000.0, *f.SeekingAmountMin)
	assert.Nil(t, f.SeekingAmountMax)
	assert.False(t, f.HasEmbedding())
}

// ==========================
// Funder
// ==========================

func TestFunderInvestsGlobally(t *testing.T) {
	assert.True(t, (&Funder{}).InvestsGlobally())
	assert.True(t, (&Funder{GeographyFocus: []Geography{GeographyEurope, GeographyGlobal}}).InvestsGlobally())
	assert.False(t, (&Funder{GeographyFocus: []Geography{GeographyEurope}}).InvestsGlobally())
}

func TestFunderSummary(t *testing.T) {
	f := &Funder{ID: "g-1", Name: "Grace", FirmName: "Hopper Capital", Embedding: []float64{1}}
	assert.Equal(t, FunderSummary{ID: "g-1", Name: "Grace", FirmName: "Hopper Capital"}, f.Summary())
	assert.True(t, f.HasEmbedding())
}

// ==========================
// Match
// ==========================

func TestNewMatch(t *testing.T) {
	b := ScoreBreakdown{
		Semantic:    BranchScore{Score: 0.9, Weight: 0.4, Contribution: 0.36},
		Stage:       BranchScore{Score: 1, Weight: 0.2, Contribution: 0.2},
		TotalScore:  0.96,
		QualityTier: TierExcellent,
	}
	b.Rule.Score, b.Rule.Weight, b.Rule.Contribution = 1, 0.4, 0.4

	m := NewMatch("f-1", "g-1", b)
	assert.Equal(t, "f-1", m.FounderID)
	assert.Equal(t, 0.9, m.SemanticScore)
	assert.Equal(t, 1.0, m.RuleScore)
	assert.Equal(t, TierExcellent, m.QualityTier)
	assert.False(t, m.IsViewed)

	assert.InDelta(t, 0.96, b.ContributionSum(), 1e-9)
	assert.InDelta(t, 1.0, b.WeightSum(), 1e-9)
}
