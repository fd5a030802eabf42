// internal/workers/matching/find-similar-funders/config.go
package findsimilarfunders

import (
	"time"

	"phalanx-matcher/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
	// Multiplier widens the search so ranking still has Limit candidates
	// after filtering.
	Multiplier int
}

func LoadConfig(wc config.WorkerConfig, m config.MatchingConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout:      timeout,
		DefaultLimit: m.DefaultLimit,
		MaxLimit:     m.MaxLimit,
		Multiplier:   m.CandidateMultiplier,
	}
}
