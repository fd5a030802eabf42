// internal/workers/matching/ingest-founder/handler.go
package ingestfounder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "ingest-founder"

type Ingestor interface {
	Ingest(ctx context.Context, input models.FounderProfileInput) (*matcher.IngestResult, error)
}

type Handler struct {
	config   *Config
	ingestor Ingestor
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, ingestor Ingestor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		ingestor: ingestor,
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
	res, err := h.ingestor.Ingest(ctx, input.FounderProfile)
	if err != nil {
		return nil, err
	}

	return &Output{
		FounderID:           res.ID,
		EmbeddingGenerated:  res.EmbeddingGenerated,
		ProfileCompleteness: res.ProfileCompleteness,
		CreatedAt:           res.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
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
