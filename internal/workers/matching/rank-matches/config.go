// internal/workers/matching/rank-matches/config.go
package rankmatches

import (
	"time"

	"phalanx-matcher/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	DefaultLimit    int
	MaxLimit        int
	DefaultMinScore float64
}

func LoadConfig(wc config.WorkerConfig, m config.MatchingConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout:         timeout,
		DefaultLimit:    m.DefaultLimit,
		MaxLimit:        m.MaxLimit,
		DefaultMinScore: m.DefaultMinScore,
	}
}
