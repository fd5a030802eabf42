// internal/workers/matching/notify-top-matches/config.go
package notifytopmatches

import (
	"time"

	"phalanx-matcher/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	EmailEnabled  bool
	EventsEnabled bool
	// MaxListed caps the funders named in the email.
	MaxListed int
}

func LoadConfig(wc config.WorkerConfig, n config.NotificationConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Config{
		Timeout:       timeout,
		EmailEnabled:  n.Email.Enabled,
		EventsEnabled: n.Events.Enabled,
		MaxListed:     5,
	}
}
