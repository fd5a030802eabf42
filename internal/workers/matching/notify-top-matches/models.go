// internal/workers/matching/notify-top-matches/models.go
package notifytopmatches

import (
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
)

const (
	StatusSent     = "sent"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"

	EventMatchesGenerated = "matches.generated"
)

type Input struct {
	FounderID     string               `json:"founderId"`
	RankedMatches []matching.Candidate `json:"rankedMatches"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	NotifiedCount  int    `json:"notifiedCount"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	EventMessageID string `json:"eventMessageId,omitempty"`
	SentAt         string `json:"sentAt"`
}

// MatchesGeneratedEvent is the SNS payload published after a run.
type MatchesGeneratedEvent struct {
	NotificationID string         `json:"notificationId"`
	FounderID      string         `json:"founderId"`
	TotalMatches   int            `json:"totalMatches"`
	TopMatches     []EventMatch   `json:"topMatches"`
	TierCounts     map[string]int `json:"tierCounts"`
	GeneratedAt    string         `json:"generatedAt"`
}

type EventMatch struct {
	FunderID    string             `json:"funderId"`
	TotalScore  float64            `json:"totalScore"`
	QualityTier models.QualityTier `json:"qualityTier"`
}
