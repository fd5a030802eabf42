// internal/workers/matching/rank-matches/handler.go
package rankmatches

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-matches"

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}
	if limit < 1 || limit > h.config.MaxLimit {
		return nil, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("limit must be between 1 and %d", h.config.MaxLimit))
	}

	minScore := h.config.DefaultMinScore
	if input.MinScore != nil {
		minScore = *input.MinScore
	}
	if minScore < 0 || minScore > 1 {
		return nil, apperrors.NewInvalidMatchParamsError("minScore must be between 0 and 1")
	}

	if input.QualityTier != "" && !models.IsValidQualityTier(input.QualityTier) {
		return nil, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("unknown quality tier %q", input.QualityTier))
	}

	// Tier filtering runs on the truncated list, so it can return fewer than limit.
	ranked := matching.Rank(input.Candidates, minScore, limit)
	ranked = matching.FilterByTier(ranked, models.QualityTier(input.QualityTier))

	out := &Output{RankedMatches: ranked, TotalResults: len(ranked)}
	if len(ranked) > 0 {
		out.TopScore = ranked[0].TotalScore()
	}

	h.logger.Info("matches ranked", map[string]interface{}{
		"candidates": len(input.Candidates),
		"returned":   out.TotalResults,
		"topScore":   out.TopScore,
	})
	return out, nil
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
