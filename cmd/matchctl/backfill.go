// cmd/matchctl/backfill.go
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"phalanx-matcher/internal/common/database"
	"phalanx-matcher/internal/common/embeddings"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/repository"
)

var (
	backfillFounderLimit int
	backfillSkipIndex    bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed profiles stored without a vector and sync the funder index",
	Long: `Generates embeddings for founders and funders that were stored
without one, then upserts every embedded funder into the Elasticsearch
funder index when Elasticsearch is enabled.`,
	Args: cobra.NoArgs,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillFounderLimit, "founder-limit", 500, "maximum number of founders to embed")
	backfillCmd.Flags().BoolVar(&backfillSkipIndex, "skip-index", false, "do not write to the funder index")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Embeddings.BaseURL == "" {
		return errors.New("embeddings.base_url is not configured")
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	b := &matcher.Backfiller{
		Founders: repository.NewFounderRepository(pg.DB),
		Funders:  repository.NewFunderRepository(pg.DB, log),
		Embedder: embeddings.NewClient(cfg.Embeddings, log),
		Logger:   log,
	}

	if cfg.Database.Redis.Address != "" {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unavailable, cached founders keep their old profile", map[string]interface{}{"error": err})
		} else {
			b.Cache = repository.NewFounderCache(rdb.Client, repository.NewFounderRepository(pg.DB), cfg.Matching.CacheTTL(), log)
		}
	}

	if cfg.Database.Elasticsearch.Enabled && !backfillSkipIndex {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		index := repository.NewFunderIndex(es.Client, cfg.Database.Elasticsearch.FunderIndex, log)
		if err := index.EnsureIndex(ctx, cfg.Embeddings.Dimensions); err != nil {
			return err
		}
		b.Index = index
	}

	stats, err := b.Run(ctx, backfillFounderLimit)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	cmd.Printf("founders embedded: %d\n", stats.FoundersEmbedded)
	cmd.Printf("funders embedded:  %d\n", stats.FundersEmbedded)
	cmd.Printf("funders indexed:   %d\n", stats.FundersIndexed)
	if stats.Failures > 0 {
		cmd.Printf("failures:          %d (see log)\n", stats.Failures)
	}
	return nil
}
