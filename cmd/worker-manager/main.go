// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"phalanx-matcher/internal/api"
	"phalanx-matcher/internal/common/camunda"
	"phalanx-matcher/internal/common/config"
	"phalanx-matcher/internal/common/database"
	"phalanx-matcher/internal/common/embeddings"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/observability"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.NewService(cfg.Logging.Level, cfg.Logging.Format, cfg.App.Name)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting matcher",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Config{
		ServiceName:    cfg.App.Name,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	}, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Repositories and scoring ---
	founders := repository.NewFounderRepository(pg.DB)
	funders := repository.NewFunderRepository(pg.DB, log)
	matches := repository.NewMatchRepository(pg.DB)
	founderCache := repository.NewFounderCache(rdb.Client, founders, cfg.Matching.CacheTTL(), log)

	scoringCfg, err := cfg.Matching.ScoringConfig()
	if err != nil {
		zapLog.Fatal("invalid scoring configuration", zap.Error(err))
	}
	scorer, err := matching.NewScorer(scoringCfg)
	if err != nil {
		zapLog.Fatal("scorer init failed", zap.Error(err))
	}
	if cfg.Matching.Concurrency > 0 {
		scorer.SetConcurrency(cfg.Matching.Concurrency)
	}

	var index *repository.FunderIndex
	if esClient != nil {
		index = repository.NewFunderIndex(esClient.Client, cfg.Database.Elasticsearch.FunderIndex, log)
		if err := index.EnsureIndex(ctx, cfg.Embeddings.Dimensions); err != nil {
			zapLog.Fatal("funder index setup failed", zap.Error(err))
		}
	}
	source := candidateSource(cfg.Matching.CandidateSource, funders, index, zapLog)

	var embedder embeddings.Embedder
	if cfg.Embeddings.BaseURL != "" {
		embedder = embeddings.NewClient(cfg.Embeddings, log)
	} else {
		zapLog.Warn("embeddings endpoint not configured, founders are stored without vectors")
	}

	svc := matcher.NewService(matcher.Deps{
		Scorer:              scorer,
		Founders:            founderCache,
		Funders:             funders,
		Source:              source,
		Saver:               matches,
		Obs:                 obs,
		Logger:              log,
		CandidateMultiplier: cfg.Matching.CandidateMultiplier,
	})
	ingestor := matcher.NewIngestor(scorer, founders, embedder, log)

	// --- Workflow workers ---
	var (
		zeebe   *camunda.Client
		workers []*camunda.CamundaWorker
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		workers, err = startWorkers(ctx, cfg, zeebe, workerDeps{
			scorer:   scorer,
			founders: founderCache,
			source:   source,
			ingestor: ingestor,
			matches:  matches,
		}, log)
		if err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	health := func(ctx context.Context) error {
		return repository.HealthCheck(ctx, pg.DB)
	}
	ready := func(ctx context.Context) error {
		if err := health(ctx); err != nil {
			return err
		}
		if err := rdb.Ping(ctx); err != nil {
			return err
		}
		if esClient != nil {
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
		}
		if zeebe != nil {
			return zeebe.HealthCheck(ctx)
		}
		return nil
	}

	server := api.NewServer(api.Deps{
		Matcher:     svc,
		Ingestor:    ingestor,
		Matches:     matches,
		Health:      health,
		Ready:       ready,
		Matching:    cfg.Matching,
		Environment: cfg.App.Environment,
		Logger:      log,
	})
	httpServer := api.NewHTTPServer(cfg.Server, server.Handler())

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	svc.Wait()
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("zeebe client close failed", zap.Error(err))
		}
	}

	zapLog.Info("Shutdown complete")
}

// candidateSource picks the nearest-neighbour backend. Elasticsearch falls
// back to pgvector when the index is not configured.
func candidateSource(name string, funders *repository.FunderRepository, index *repository.FunderIndex, log *zap.Logger) matcher.CandidateSource {
	if name == config.CandidateSourceElasticsearch {
		if index != nil {
			return matcher.ElasticsearchSource{Index: index, Funders: funders}
		}
		log.Warn("elasticsearch candidate source requested but elasticsearch is disabled, using pgvector")
	}
	return matcher.PgvectorSource{Funders: funders}
}
