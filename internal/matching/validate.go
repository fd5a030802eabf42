// internal/matching/validate.go
package matching

import (
	"math"

	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/models"
)

// BreakdownTolerance is the absolute slack allowed by ValidateBreakdown.
const BreakdownTolerance = 0.01

// ValidateBreakdown checks that the contributions add up to the total and the
// top-level weights add up to one.
func ValidateBreakdown(b models.ScoreBreakdown) bool {
	return ValidateBreakdownWithLogger(b, nil)
}

// ValidateBreakdownWithLogger is ValidateBreakdown with a warning logged on
// failure. log may be nil.
func ValidateBreakdownWithLogger(b models.ScoreBreakdown, log logger.Logger) bool {
	sum := b.ContributionSum()
	if math.Abs(sum-b.TotalScore) > BreakdownTolerance {
		if log != nil {
			log.Warn("score breakdown validation failed", map[string]interface{}{
				"calculated": sum,
				"reported":   b.TotalScore,
			})
		}
		return false
	}

	weights := b.WeightSum()
	if math.Abs(weights-1.0) > BreakdownTolerance {
		if log != nil {
			log.Warn("weight sum validation failed", map[string]interface{}{
				"weightSum": weights,
			})
		}
		return false
	}
	return true
}
