// internal/api/params.go
package api

import (
	"fmt"
	"net/url"
	"strconv"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/models"
)

// parseMatchParams reads limit, minScore and qualityTier from the query.
func parseMatchParams(q url.Values, defaultLimit, maxLimit int, defaultMinScore float64) (matcher.Params, error) {
	p := matcher.Params{Limit: defaultLimit, MinScore: defaultMinScore}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("limit %q is not an integer", raw))
		}
		p.Limit = n
	}
	if p.Limit < 1 || p.Limit > maxLimit {
		return p, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("Limit must be between 1 and %d", maxLimit))
	}

	if raw := q.Get("minScore"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("minScore %q is not a number", raw))
		}
		p.MinScore = f
	}
	if p.MinScore < 0 || p.MinScore > 1 {
		return p, apperrors.NewInvalidMatchParamsError("minScore must be between 0.0 and 1.0")
	}

	if raw := q.Get("qualityTier"); raw != "" {
		if !models.IsValidQualityTier(raw) {
			return p, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("unknown qualityTier %q", raw))
		}
		p.QualityTier = models.QualityTier(raw)
	}
	return p, nil
}
