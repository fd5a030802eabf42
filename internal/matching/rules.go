// internal/matching/rules.go
package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"phalanx-matcher/internal/models"
)

// IndustryResult is the industry leaf before weighting.
type IndustryResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// CheckSizeResult carries the overlap metrics next to the score. Amounts are
// in thousands.
type CheckSizeResult struct {
	Score         float64 `json:"score"`
	OverlapAmount float64 `json:"overlap_amount"`
	FounderRange  float64 `json:"founder_range"`
	Reasoning     string  `json:"reasoning"`
}

type GeographyResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

type CompletenessResult struct {
	Score        float64 `json:"score"`
	FilledFields int     `json:"filled_fields"`
	TotalFields  int     `json:"total_fields"`
	Reasoning    string  `json:"reasoning"`
}

// RuleResult is the aggregated rule branch.
type RuleResult struct {
	Score     float64                   `json:"score"`
	Breakdown models.RuleScoreBreakdown `json:"breakdown"`
}

// IndustryScore gives 1.0 for an exact preference, 0.5 when a preferred
// industry is related to the founder's, 0 otherwise. Relations are looked up
// from the founder's side only.
func (c Config) IndustryScore(founder models.Industry, preferred []models.Industry) IndustryResult {
	for _, p := range preferred {
		if p == founder {
			return IndustryResult{Score: 1.0, Reasoning: fmt.Sprintf("Exact match: %s", founder)}
		}
	}

	related := c.relations()[founder]
	for _, p := range preferred {
		for _, r := range related {
			if p == r {
				return IndustryResult{Score: 0.5, Reasoning: fmt.Sprintf("Related industry: %s ↔ %s", founder, p)}
			}
		}
	}

	return IndustryResult{
		Score:     0.0,
		Reasoning: fmt.Sprintf("No industry overlap: %s vs [%s]", founder, joinIndustries(preferred)),
	}
}

// CheckSizeScore measures how much of the founder's seeking range the funder
// covers. A nil bound is missing; zero is a real amount.
func CheckSizeScore(founderMin, founderMax, funderMin, funderMax *float64) CheckSizeResult {
	if founderMin == nil || founderMax == nil {
		return CheckSizeResult{
			Score:     0.5,
			Reasoning: "Founder seeking amount not specified - neutral score",
		}
	}

	fMin, fMax := *founderMin, *founderMax
	width := fMax - fMin

	if funderMin == nil || funderMax == nil {
		return CheckSizeResult{
			Score:         1.0,
			OverlapAmount: width,
			FounderRange:  width,
			Reasoning:     "Funder check size flexible - assumed match",
		}
	}

	gMin, gMax := *funderMin, *funderMax
	overlapMin := math.Max(fMin, gMin)
	overlapMax := math.Min(fMax, gMax)
	overlap := math.Max(0, overlapMax-overlapMin)

	score := 0.0
	if width > 0 {
		score = clamp01(overlap / width)
	}

	var reasoning string
	switch {
	case score == 1.0:
		reasoning = fmt.Sprintf("Perfect fit: $%sk-$%sk fully within funder range $%sk-$%sk",
			amount(fMin), amount(fMax), amount(gMin), amount(gMax))
	case score >= 0.5:
		reasoning = fmt.Sprintf("Good overlap: %d%% of founder's range covered", percent(score))
	case score > 0:
		reasoning = fmt.Sprintf("Partial overlap: $%sk-$%sk (%d%% coverage)",
			amount(overlapMin), amount(overlapMax), percent(score))
	default:
		reasoning = fmt.Sprintf("No overlap: Founder seeks $%sk-$%sk, Funder invests $%sk-$%sk",
			amount(fMin), amount(fMax), amount(gMin), amount(gMax))
	}

	return CheckSizeResult{
		Score:         score,
		OverlapAmount: overlap,
		FounderRange:  width,
		Reasoning:     reasoning,
	}
}

// GeographyScore treats an empty focus or one containing Global as
// unrestricted.
func GeographyScore(founder models.Geography, focus []models.Geography) GeographyResult {
	global := len(focus) == 0
	for _, g := range focus {
		if g == models.GeographyGlobal {
			global = true
			break
		}
	}
	if global {
		return GeographyResult{Score: 1.0, Reasoning: "Funder invests globally"}
	}

	if founder == "" {
		return GeographyResult{Score: 0.5, Reasoning: "Founder geography not specified - neutral score"}
	}

	for _, g := range focus {
		if g == founder {
			return GeographyResult{Score: 1.0, Reasoning: fmt.Sprintf("Geography match: %s", founder)}
		}
	}

	names := make([]string, len(focus))
	for i, g := range focus {
		names[i] = string(g)
	}
	return GeographyResult{
		Score:     0.0,
		Reasoning: fmt.Sprintf("Geography mismatch: %s not in [%s]", founder, strings.Join(names, ", ")),
	}
}

// CompletenessScore counts filled checklist fields. Numeric zero counts as
// filled.
func (c Config) CompletenessScore(f *models.Founder) CompletenessResult {
	fields := c.fields()
	filled := 0
	for _, field := range fields {
		if fieldFilled(f, field) {
			filled++
		}
	}

	total := len(fields)
	ratio := 0.0
	if total > 0 {
		ratio = float64(filled) / float64(total)
	}

	return CompletenessResult{
		Score:        round(ratio, 2),
		FilledFields: filled,
		TotalFields:  total,
		Reasoning:    fmt.Sprintf("Profile %d%% complete (%d/%d fields)", percent(ratio), filled, total),
	}
}

// ProfileCompleteness is the completeness ratio stored on a founder at ingest.
func ProfileCompleteness(f *models.Founder) float64 {
	return DefaultConfig().CompletenessScore(f).Score
}

// RuleScore aggregates the four rule leaves with the configured weights.
func (c Config) RuleScore(founder *models.Founder, funder *models.Funder) RuleResult {
	industry := c.IndustryScore(founder.Industry, funder.PreferredIndustries)
	checkSize := CheckSizeScore(founder.SeekingAmountMin, founder.SeekingAmountMax, funder.CheckSizeMin, funder.CheckSizeMax)
	geography := GeographyScore(founder.Geography, funder.GeographyFocus)
	completeness := c.CompletenessScore(founder)

	rw := c.RuleWeights
	breakdown := models.RuleScoreBreakdown{
		IndustryMatch: models.SubScore{Score: industry.Score, Weight: rw.Industry, Reasoning: industry.Reasoning},
		CheckSize:     models.SubScore{Score: checkSize.Score, Weight: rw.CheckSize, Reasoning: checkSize.Reasoning},
		Geography:     models.SubScore{Score: geography.Score, Weight: rw.Geography, Reasoning: geography.Reasoning},
		Completeness:  models.SubScore{Score: completeness.Score, Weight: rw.Completeness, Reasoning: completeness.Reasoning},
	}

	score := industry.Score*rw.Industry +
		checkSize.Score*rw.CheckSize +
		geography.Score*rw.Geography +
		completeness.Score*rw.Completeness

	return RuleResult{Score: round(score, 4), Breakdown: breakdown}
}

func fieldFilled(f *models.Founder, field string) bool {
	if f == nil {
		return false
	}
	switch field {
	case FieldName:
		return f.Name != ""
	case FieldEmail:
		return f.Email != ""
	case FieldIndustry:
		return f.Industry != ""
	case FieldStage:
		return f.Stage != ""
	case FieldCompanyName:
		return f.CompanyName != ""
	case FieldCompanyDescription:
		return f.CompanyDescription != ""
	case FieldSeekingAmountMin:
		return f.SeekingAmountMin != nil
	case FieldSeekingAmountMax:
		return f.SeekingAmountMax != nil
	case FieldGeography:
		return f.Geography != ""
	default:
		return false
	}
}

func joinIndustries(in []models.Industry) string {
	names := make([]string, len(in))
	for i, v := range in {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
