// internal/workers/matching/notify-top-matches/handler.go
package notifytopmatches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phalanx-matcher/internal/common/aws"
	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-top-matches"

// Emailer is satisfied by aws.SESClient.
type Emailer interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

// EventPublisher is satisfied by aws.SNSClient.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) (string, error)
}

type Handler struct {
	config   *Config
	founders matcher.FounderReader
	emailer  Emailer
	events   EventPublisher
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler wires the notifier. emailer and events may be nil when the
// matching channel is disabled.
func NewHandler(config *Config, founders matcher.FounderReader, emailer Emailer, events EventPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		founders: founders,
		emailer:  emailer,
		events:   events,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.fail(ctx, client, job, timer, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.fail(ctx, client, job, timer, err)
	}

	timer.Done("")
	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.FounderID == "" {
		return nil, apperrors.NewInvalidInputError("founderId is required")
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	emailOn := h.config.EmailEnabled && h.emailer != nil
	eventsOn := h.config.EventsEnabled && h.events != nil
	if !emailOn && !eventsOn {
		return out, nil
	}

	top := topMatches(input.RankedMatches, h.config.MaxListed)
	out.NotifiedCount = len(top)
	out.Status = StatusSkipped

	if eventsOn {
		id, err := h.events.PublishEvent(ctx, EventMatchesGenerated, buildEvent(out, input, top))
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError("event", err)
		}
		out.EventMessageID = id
		out.Status = StatusSent
	}

	if emailOn && len(top) > 0 {
		id, err := h.sendEmail(ctx, input.FounderID, top)
		if err != nil {
			return nil, err
		}
		if id != "" {
			out.EmailMessageID = id
			out.Status = StatusSent
		}
	}

	h.logger.Info("top matches notified", map[string]interface{}{
		"founderId":      input.FounderID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"notified":       out.NotifiedCount,
	})
	return out, nil
}

// sendEmail returns an empty id when the founder has no address on file.
func (h *Handler) sendEmail(ctx context.Context, founderID string, top []matching.Candidate) (string, error) {
	founder, err := h.founders.GetByID(ctx, founderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewFounderNotFoundError(founderID)
		}
		return "", apperrors.NewQueryExecutionFailedError("get_founder", err)
	}
	if founder.Email == "" {
		h.logger.Warn("founder has no email address", map[string]interface{}{"founderId": founderID})
		return "", nil
	}

	subject, body, err := renderEmail(founder, top)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	id, err := h.emailer.Send(ctx, aws.Email{To: founder.Email, Subject: subject, Text: body})
	if err != nil {
		h.logger.Error("email send failed", map[string]interface{}{
			"error":     err,
			"founderId": founderID,
		})
		return "", apperrors.NewNotificationSendFailedError("email", err)
	}
	return id, nil
}

// topMatches keeps Excellent and Good matches in their ranked order.
func topMatches(ranked []matching.Candidate, max int) []matching.Candidate {
	var out []matching.Candidate
	for _, c := range ranked {
		if c.Breakdown.QualityTier != models.TierExcellent && c.Breakdown.QualityTier != models.TierGood {
			continue
		}
		out = append(out, c)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func buildEvent(out *Output, input *Input, top []matching.Candidate) MatchesGeneratedEvent {
	ev := MatchesGeneratedEvent{
		NotificationID: out.NotificationID,
		FounderID:      input.FounderID,
		TotalMatches:   len(input.RankedMatches),
		TopMatches:     make([]EventMatch, 0, len(top)),
		TierCounts:     map[string]int{},
		GeneratedAt:    out.SentAt,
	}
	for _, c := range input.RankedMatches {
		ev.TierCounts[string(c.Breakdown.QualityTier)]++
	}
	for _, c := range top {
		ev.TopMatches = append(ev.TopMatches, EventMatch{
			FunderID:    c.Funder.ID,
			TotalScore:  c.Breakdown.TotalScore,
			QualityTier: c.Breakdown.QualityTier,
		})
	}
	return ev
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) error {
	timer.Done(string(apperrors.AsStandardError(err).Code))
	h.errors.HandleJobError(ctx, client, job, err)
	return err
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
