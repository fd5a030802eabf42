// internal/matching/config_test.go
package matching

import (
	"errors"
	"testing"

	"phalanx-matcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
	assert.InDelta(t, 1.0, cfg.RuleWeights.Sum(), 1e-9)
	assert.Equal(t, TierThresholds{Excellent: 0.90, Good: 0.75, Fair: 0.50}, cfg.TierThresholds)
	assert.Len(t, cfg.CompletenessFields(), 9)
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(c Config) Config
	}{
		{"weights over one", func(c Config) Config {
			c.Weights.Stage = 0.3
			return c
		}},
		{"negative weight", func(c Config) Config {
			c.Weights = Weights{Semantic: 0.8, Rule: 0.4, Stage: -0.2}
			return c
		}},
		{"rule weights under one", func(c Config) Config {
			c.RuleWeights.Completeness = 0
			return c
		}},
		{"thresholds not descending", func(c Config) Config {
			c.TierThresholds = TierThresholds{Excellent: 0.7, Good: 0.75, Fair: 0.5}
			return c
		}},
		{"threshold above one", func(c Config) Config {
			c.TierThresholds.Excellent = 1.2
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(base).Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}

	require.NoError(t, base.Validate(), "mutations must not leak into the base config")
}

func TestIndustryRelations_Table(t *testing.T) {
	cfg := DefaultConfig()

	for _, ind := range models.Industries() {
		assert.NotEmpty(t, cfg.RelatedIndustries(ind), "industry %s has no relations", ind)
	}

	assert.Equal(t,
		[]models.Industry{models.IndustryFintech, models.IndustryHealthTech, models.IndustryDeepTech},
		cfg.RelatedIndustries(models.IndustryEnterpriseSaaS))
	assert.NotContains(t, cfg.RelatedIndustries(models.IndustryEnterpriseSaaS), models.IndustryEdTech)
	assert.Contains(t, cfg.RelatedIndustries(models.IndustryEdTech), models.IndustryEnterpriseSaaS)
}

func TestStageAdjacency_IsLinearChain(t *testing.T) {
	cfg := DefaultConfig()
	stages := models.Stages()

	for i, s := range stages {
		adj := cfg.AdjacentStages(s)
		if i > 0 {
			assert.Contains(t, adj, stages[i-1])
		}
		if i < len(stages)-1 {
			assert.Contains(t, adj, stages[i+1])
		}
		for _, a := range adj {
			assert.Contains(t, cfg.AdjacentStages(a), s, "adjacency must be symmetric")
		}
	}
}

func TestConfigTables_ReturnCopies(t *testing.T) {
	cfg := DefaultConfig()

	rel := cfg.RelatedIndustries(models.IndustryFintech)
	rel[0] = models.IndustryConsumer
	assert.Equal(t, models.IndustryEnterpriseSaaS, cfg.RelatedIndustries(models.IndustryFintech)[0])

	fields := cfg.CompletenessFields()
	fields[0] = "nickname"
	assert.Equal(t, FieldName, cfg.CompletenessFields()[0])

	stages := cfg.AdjacentStages(models.StageSeed)
	stages[0] = models.StageSeriesBP
	assert.Equal(t, models.StagePreSeed, cfg.AdjacentStages(models.StageSeed)[0])
}

func TestTierInfo(t *testing.T) {
	assert.Equal(t, "#10B981", models.GetTierInfo(models.TierExcellent).Color)
	assert.Equal(t, "#EF4444", models.GetTierInfo(models.TierPoor).Color)
	assert.Equal(t, "Good", models.GetTierInfo(models.TierGood).Label)
}
