// internal/matching/config.go
package matching

import (
	"fmt"
	"math"

	"phalanx-matcher/internal/models"
)

const weightTolerance = 1e-6

// Weights are the top-level branch weights of the hybrid score.
type Weights struct {
	Semantic float64 `json:"semantic" mapstructure:"semantic"`
	Rule     float64 `json:"rule" mapstructure:"rule"`
	Stage    float64 `json:"stage" mapstructure:"stage"`
}

func (w Weights) Sum() float64 {
	return w.Semantic + w.Rule + w.Stage
}

func (w Weights) Validate() error {
	return validateWeightSet("weights", w.Semantic, w.Rule, w.Stage)
}

// RuleWeights split the rule branch into its four leaves.
type RuleWeights struct {
	Industry     float64 `json:"industry" mapstructure:"industry"`
	CheckSize    float64 `json:"check_size" mapstructure:"check_size"`
	Geography    float64 `json:"geography" mapstructure:"geography"`
	Completeness float64 `json:"completeness" mapstructure:"completeness"`
}

func (w RuleWeights) Sum() float64 {
	return w.Industry + w.CheckSize + w.Geography + w.Completeness
}

func (w RuleWeights) Validate() error {
	return validateWeightSet("rule weights", w.Industry, w.CheckSize, w.Geography, w.Completeness)
}

// TierThresholds are the inclusive lower bounds of each tier.
type TierThresholds struct {
	Excellent float64 `json:"excellent" mapstructure:"excellent"`
	Good      float64 `json:"good" mapstructure:"good"`
	Fair      float64 `json:"fair" mapstructure:"fair"`
}

func (t TierThresholds) Validate() error {
	if t.Fair < 0 || t.Excellent > 1 {
		return fmt.Errorf("%w: tier thresholds must lie in [0,1]", ErrInvalidConfig)
	}
	if !(t.Excellent > t.Good && t.Good > t.Fair) {
		return fmt.Errorf("%w: tier thresholds must be strictly descending (excellent %.2f, good %.2f, fair %.2f)",
			ErrInvalidConfig, t.Excellent, t.Good, t.Fair)
	}
	return nil
}

// Tier maps a total score onto a quality tier, highest tier first.
func (t TierThresholds) Tier(total float64) models.QualityTier {
	switch {
	case total >= t.Excellent:
		return models.TierExcellent
	case total >= t.Good:
		return models.TierGood
	case total >= t.Fair:
		return models.TierFair
	default:
		return models.TierPoor
	}
}

// Config is the immutable scoring configuration handed to NewScorer.
type Config struct {
	Weights        Weights
	RuleWeights    RuleWeights
	TierThresholds TierThresholds

	industryRelations  map[models.Industry][]models.Industry
	stageAdjacency     map[models.Stage][]models.Stage
	completenessFields []string
}

var defaultIndustryRelations = map[models.Industry][]models.Industry{
	models.IndustryFintech:        {models.IndustryEnterpriseSaaS, models.IndustryDeepTech},
	models.IndustryHealthTech:     {models.IndustryDeepTech, models.IndustryEnterpriseSaaS},
	models.IndustryEdTech:         {models.IndustryEnterpriseSaaS, models.IndustryConsumer},
	models.IndustryEnterpriseSaaS: {models.IndustryFintech, models.IndustryHealthTech, models.IndustryDeepTech},
	models.IndustryConsumer:       {models.IndustryEdTech, models.IndustryPropTech},
	models.IndustryDeepTech:       {models.IndustryFintech, models.IndustryHealthTech, models.IndustryCybersecurity},
	models.IndustryCleanTech:      {models.IndustryEnterpriseSaaS, models.IndustryLogistics},
	models.IndustryPropTech:       {models.IndustryConsumer, models.IndustryFintech},
	models.IndustryLogistics:      {models.IndustryCleanTech, models.IndustryEnterpriseSaaS},
	models.IndustryCybersecurity:  {models.IndustryDeepTech, models.IndustryEnterpriseSaaS},
}

var defaultStageAdjacency = map[models.Stage][]models.Stage{
	models.StagePreSeed:  {models.StageSeed},
	models.StageSeed:     {models.StagePreSeed, models.StageSeriesA},
	models.StageSeriesA:  {models.StageSeed, models.StageSeriesBP},
	models.StageSeriesBP: {models.StageSeriesA},
}

// Field names checked by the completeness sub-score.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldIndustry           = "industry"
	FieldStage              = "stage"
	FieldCompanyName        = "company_name"
	FieldCompanyDescription = "company_description"
	FieldSeekingAmountMin   = "seeking_amount_min"
	FieldSeekingAmountMax   = "seeking_amount_max"
	FieldGeography          = "geography"
)

var defaultCompletenessFields = []string{
	FieldName, FieldEmail, FieldIndustry, FieldStage, FieldCompanyName,
	FieldCompanyDescription, FieldSeekingAmountMin, FieldSeekingAmountMax, FieldGeography,
}

// DefaultConfig returns the production weights, thresholds and tables.
func DefaultConfig() Config {
	return Config{
		Weights:            Weights{Semantic: 0.40, Rule: 0.40, Stage: 0.20},
		RuleWeights:        RuleWeights{Industry: 0.375, CheckSize: 0.375, Geography: 0.125, Completeness: 0.125},
		TierThresholds:     TierThresholds{Excellent: 0.90, Good: 0.75, Fair: 0.50},
		industryRelations:  defaultIndustryRelations,
		stageAdjacency:     defaultStageAdjacency,
		completenessFields: defaultCompletenessFields,
	}
}

// WithOverrides returns a copy of c with new weights and thresholds. The
// lookup tables are shared with c since they are never written.
func (c Config) WithOverrides(w Weights, rw RuleWeights, t TierThresholds) Config {
	c.Weights = w
	c.RuleWeights = rw
	c.TierThresholds = t
	return c
}

func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.RuleWeights.Validate(); err != nil {
		return err
	}
	return c.TierThresholds.Validate()
}

// RelatedIndustries returns a copy of the industries related to i, as seen
// from i. The relation is not symmetric.
func (c Config) RelatedIndustries(i models.Industry) []models.Industry {
	return append([]models.Industry(nil), c.relations()[i]...)
}

// AdjacentStages returns a copy of the stages next to s on the chain.
func (c Config) AdjacentStages(s models.Stage) []models.Stage {
	return append([]models.Stage(nil), c.adjacency()[s]...)
}

// CompletenessFields returns a copy of the completeness checklist.
func (c Config) CompletenessFields() []string {
	return append([]string(nil), c.fields()...)
}

func (c Config) relations() map[models.Industry][]models.Industry {
	if c.industryRelations == nil {
		return defaultIndustryRelations
	}
	return c.industryRelations
}

func (c Config) adjacency() map[models.Stage][]models.Stage {
	if c.stageAdjacency == nil {
		return defaultStageAdjacency
	}
	return c.stageAdjacency
}

func (c Config) fields() []string {
	if c.completenessFields == nil {
		return defaultCompletenessFields
	}
	return c.completenessFields
}

func validateWeightSet(name string, weights ...float64) error {
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: %s contain a negative weight %f", ErrInvalidConfig, name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: %s sum to %.4f, must sum to 1.0", ErrInvalidConfig, name, sum)
	}
	return nil
}
