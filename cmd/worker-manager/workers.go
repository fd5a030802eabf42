// cmd/worker-manager/workers.go
package main

import (
	"context"
	"fmt"

	"phalanx-matcher/internal/common/aws"
	"phalanx-matcher/internal/common/camunda"
	"phalanx-matcher/internal/common/config"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/repository"

	cms "phalanx-matcher/internal/workers/matching/calculate-match-score"
	fsf "phalanx-matcher/internal/workers/matching/find-similar-funders"
	inf "phalanx-matcher/internal/workers/matching/ingest-founder"
	ntm "phalanx-matcher/internal/workers/matching/notify-top-matches"
	rm "phalanx-matcher/internal/workers/matching/rank-matches"
	sm "phalanx-matcher/internal/workers/matching/save-matches"
)

type workerDeps struct {
	scorer   *matching.Scorer
	founders matcher.FounderReader
	source   matcher.CandidateSource
	ingestor *matcher.Ingestor
	matches  *repository.MatchRepository
}

// startWorkers opens a job worker for every enabled matching task.
func startWorkers(ctx context.Context, cfg *config.Config, zeebe *camunda.Client, deps workerDeps, log logger.Logger) ([]*camunda.CamundaWorker, error) {
	handlers := map[string]camunda.JobHandler{}

	if config.IsWorkerEnabled(cfg, inf.TaskType) {
		wc := config.GetWorkerConfig(cfg, inf.TaskType)
		handlers[inf.TaskType] = inf.NewHandler(inf.LoadConfig(wc), deps.ingestor, log)
	}

	if config.IsWorkerEnabled(cfg, fsf.TaskType) {
		wc := config.GetWorkerConfig(cfg, fsf.TaskType)
		handlers[fsf.TaskType] = fsf.NewHandler(fsf.LoadConfig(wc, cfg.Matching), deps.founders, deps.source, log)
	}

	if config.IsWorkerEnabled(cfg, cms.TaskType) {
		wc := config.GetWorkerConfig(cfg, cms.TaskType)
		handlers[cms.TaskType] = cms.NewHandler(cms.LoadConfig(wc), deps.scorer, deps.founders, log)
	}

	if config.IsWorkerEnabled(cfg, rm.TaskType) {
		wc := config.GetWorkerConfig(cfg, rm.TaskType)
		handlers[rm.TaskType] = rm.NewHandler(rm.LoadConfig(wc, cfg.Matching), log)
	}

	if config.IsWorkerEnabled(cfg, sm.TaskType) {
		wc := config.GetWorkerConfig(cfg, sm.TaskType)
		handlers[sm.TaskType] = sm.NewHandler(sm.LoadConfig(wc), deps.matches, log)
	}

	if config.IsWorkerEnabled(cfg, ntm.TaskType) {
		h, err := notifyHandler(ctx, cfg, deps.founders, log)
		if err != nil {
			return nil, err
		}
		handlers[ntm.TaskType] = h
	}

	workers := make([]*camunda.CamundaWorker, 0, len(handlers))
	for taskType, h := range handlers {
		wc := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, h, log))
	}
	return workers, nil
}

func notifyHandler(ctx context.Context, cfg *config.Config, founders matcher.FounderReader, log logger.Logger) (*ntm.Handler, error) {
	n := cfg.Notifications
	wc := config.GetWorkerConfig(cfg, ntm.TaskType)

	var (
		emailer ntm.Emailer
		events  ntm.EventPublisher
	)
	if n.Email.Enabled || n.Events.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ntm.TaskType, err)
		}
		if n.Email.Enabled {
			emailer = aws.NewSESClient(awsCfg, n.Email.FromEmail)
		}
		if n.Events.Enabled {
			events = aws.NewSNSClient(awsCfg, n.Events.TopicARN)
		}
	}

	return ntm.NewHandler(ntm.LoadConfig(wc, n), founders, emailer, events, log), nil
}
