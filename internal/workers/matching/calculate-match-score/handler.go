// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-match-score"

type Handler struct {
	config   *Config
	scorer   *matching.Scorer
	founders matcher.FounderReader
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the scoring worker. founders is usually the Redis
// backed FounderCache.
func NewHandler(config *Config, scorer *matching.Scorer, founders matcher.FounderReader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		scorer:   scorer,
		founders: founders,
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
	founder, err := h.resolveFounder(ctx, input)
	if err != nil {
		return nil, err
	}

	scored, err := h.scorer.ScoreCandidates(ctx, founder, input.Candidates)
	if err != nil {
		if matching.IsInvalidInput(err) {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		return nil, apperrors.NewInternalError(err)
	}

	tiers := map[models.QualityTier]int{}
	for _, c := range scored {
		tiers[c.Breakdown.QualityTier]++
		metrics.MatchesScored.WithLabelValues(string(c.Breakdown.QualityTier)).Inc()
		matching.ValidateBreakdownWithLogger(c.Breakdown, h.logger)
	}

	h.logger.Info("candidates scored", map[string]interface{}{
		"founderId": founder.ID,
		"scored":    len(scored),
		"tiers":     tiers,
	})

	return &Output{
		FounderID:     founder.ID,
		ScoredMatches: scored,
		ScoredCount:   len(scored),
	}, nil
}

func (h *Handler) resolveFounder(ctx context.Context, input *Input) (*models.Founder, error) {
	if input.Founder != nil {
		if err := input.Founder.Validate(); err != nil {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		return input.Founder, nil
	}
	if input.FounderID == "" {
		return nil, apperrors.NewInvalidInputError("founderId or founder is required")
	}

	founder, err := h.founders.GetByID(ctx, input.FounderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewFounderNotFoundError(input.FounderID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get_founder", err)
	}
	return founder, nil
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
