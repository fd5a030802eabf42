// internal/workers/matching/save-matches/handler.go
package savematches

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/matcher"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "save-matches"

type Handler struct {
	config *Config
	saver  matcher.MatchSaver
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, saver matcher.MatchSaver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		saver:  saver,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.FounderID == "" {
		return nil, apperrors.NewInvalidInputError("founderId is required")
	}

	saved, err := h.saver.SaveBatch(ctx, input.FounderID, input.Matches)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewQueryTimeoutError("save_matches")
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	ids := make([]string, len(saved))
	for i, m := range saved {
		ids[i] = m.ID
	}

	h.logger.Info("matches saved", map[string]interface{}{
		"founderId": input.FounderID,
		"saved":     len(saved),
	})
	return &Output{SavedCount: len(saved), MatchIDs: ids}, nil
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
