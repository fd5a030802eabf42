// internal/workers/matching/find-similar-funders/handler.go
package findsimilarfunders

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
	"phalanx-matcher/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "find-similar-funders"

type Handler struct {
	config   *Config
	founders matcher.FounderReader
	source   matcher.CandidateSource
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, founders matcher.FounderReader, source matcher.CandidateSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		founders: founders,
		source:   source,
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

	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}
	if limit < 1 || limit > h.config.MaxLimit {
		return nil, apperrors.NewInvalidMatchParamsError(fmt.Sprintf("limit must be between 1 and %d", h.config.MaxLimit))
	}

	founder, err := h.founders.GetByID(ctx, input.FounderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewFounderNotFoundError(input.FounderID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get_founder", err)
	}
	if !founder.HasEmbedding() {
		return nil, apperrors.NewEmbeddingMissingError(input.FounderID)
	}

	multiplier := h.config.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}
	similar, err := h.source.FindCandidates(ctx, founder, limit*multiplier)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewQueryTimeoutError("find_similar_funders")
		}
		return nil, apperrors.NewSearchQueryFailedError("find_similar_funders", err)
	}

	candidates := make([]matching.CandidateInput, len(similar))
	for i, sf := range similar {
		f := sf.Funder
		f.Embedding = nil
		score := sf.SemanticScore
		candidates[i] = matching.CandidateInput{Funder: f, SemanticScore: &score}
	}

	h.logger.Info("similar funders found", map[string]interface{}{
		"founderId": input.FounderID,
		"requested": limit * multiplier,
		"found":     len(candidates),
	})

	return &Output{
		FounderID:  input.FounderID,
		Candidates: candidates,
		TotalFound: len(candidates),
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
