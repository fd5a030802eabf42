// internal/matching/stage.go
package matching

import (
	"fmt"
	"strings"

	"phalanx-matcher/internal/models"
)

type StageResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// StageScore gives 1.0 for an exact stage, 0.5 for a neighbour on the chain.
func (c Config) StageScore(founder models.Stage, preferred []models.Stage) StageResult {
	for _, p := range preferred {
		if p == founder {
			return StageResult{Score: 1.0, Reasoning: fmt.Sprintf("Exact stage match: %s", founder)}
		}
	}

	adjacent := c.adjacency()[founder]
	for _, p := range preferred {
		for _, a := range adjacent {
			if p == a {
				return StageResult{Score: 0.5, Reasoning: fmt.Sprintf("Adjacent stage: %s ↔ %s", founder, p)}
			}
		}
	}

	names := make([]string, len(preferred))
	for i, p := range preferred {
		names[i] = string(p)
	}
	return StageResult{
		Score:     0.0,
		Reasoning: fmt.Sprintf("Stage mismatch: %s vs [%s]", founder, strings.Join(names, ", ")),
	}
}
