// internal/repository/matches.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const matchColumns = `id, created_at, founder_id, funder_id, semantic_score, rule_score,
	stage_score, total_score, score_breakdown, quality_tier, is_viewed, viewed_at`

type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// SaveBatch upserts one row per candidate keyed on (founder_id, funder_id)
// in a single transaction and bumps total_matches_generated for funders
// matched for the first time.
func (r *MatchRepository) SaveBatch(ctx context.Context, founderID string, candidates []matching.Candidate) ([]models.Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin match batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (
			id, founder_id, funder_id, semantic_score, rule_score, stage_score,
			total_score, score_breakdown, quality_tier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (founder_id, funder_id) DO UPDATE SET
			semantic_score  = EXCLUDED.semantic_score,
			rule_score      = EXCLUDED.rule_score,
			stage_score     = EXCLUDED.stage_score,
			total_score     = EXCLUDED.total_score,
			score_breakdown = EXCLUDED.score_breakdown,
			quality_tier    = EXCLUDED.quality_tier
		RETURNING id, created_at, is_viewed, (xmax = 0) AS inserted`)
	if err != nil {
		return nil, fmt.Errorf("prepare match upsert: %w", err)
	}
	defer stmt.Close()

	saved := make([]models.Match, 0, len(candidates))
	var fresh []string
	for _, c := range candidates {
		m := models.NewMatch(founderID, c.Funder.ID, c.Breakdown)

		breakdown, err := json.Marshal(c.Breakdown)
		if err != nil {
			return nil, fmt.Errorf("marshal score breakdown: %w", err)
		}

		var inserted bool
		err = stmt.QueryRowContext(ctx,
			uuid.New().String(), m.FounderID, m.FunderID,
			m.SemanticScore, m.RuleScore, m.StageScore, m.TotalScore,
			breakdown, string(m.QualityTier),
		).Scan(&m.ID, &m.CreatedAt, &m.IsViewed, &inserted)
		if err != nil {
			return nil, fmt.Errorf("upsert match %s/%s: %w", m.FounderID, m.FunderID, err)
		}

		if inserted {
			fresh = append(fresh, m.FunderID)
		}
		saved = append(saved, m)
	}

	if len(fresh) > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE funders SET total_matches_generated = total_matches_generated + 1
			WHERE id = ANY($1)`, pq.Array(fresh)); err != nil {
			return nil, fmt.Errorf("update funder match counts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit match batch: %w", err)
	}
	return saved, nil
}

// ListForFounder returns stored matches at or above minScore, best first.
func (r *MatchRepository) ListForFounder(ctx context.Context, founderID string, minScore float64, limit int) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE founder_id = $1 AND total_score >= $2
		ORDER BY total_score DESC
		LIMIT $3`, founderID, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

// Exists reports whether a match is stored for the pair.
func (r *MatchRepository) Exists(ctx context.Context, founderID, funderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM matches
			WHERE founder_id = $1 AND funder_id = $2
		)`, founderID, funderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check match: %w", err)
	}
	return exists, nil
}

// MarkViewed flags a match as seen by the founder.
func (r *MatchRepository) MarkViewed(ctx context.Context, matchID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET is_viewed = TRUE, viewed_at = $2 WHERE id = $1`,
		matchID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark match viewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark match viewed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	return nil
}

// Stats counts a founder's stored matches per tier.
func (r *MatchRepository) Stats(ctx context.Context, founderID string) (models.MatchStats, error) {
	var s models.MatchStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE quality_tier = $2),
			COUNT(*) FILTER (WHERE quality_tier = $3),
			COUNT(*) FILTER (WHERE quality_tier = $4),
			COUNT(*) FILTER (WHERE quality_tier = $5),
			COALESCE(AVG(total_score), 0)
		FROM matches WHERE founder_id = $1`,
		founderID,
		string(models.TierExcellent), string(models.TierGood),
		string(models.TierFair), string(models.TierPoor),
	).Scan(&s.TotalMatches, &s.ExcellentCount, &s.GoodCount, &s.FairCount, &s.PoorCount, &s.AvgScore)
	if err != nil {
		return models.MatchStats{}, fmt.Errorf("match stats: %w", err)
	}
	return s, nil
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m         models.Match
		breakdown []byte
		tier      string
		viewedAt  sql.NullTime
	)
	err := row.Scan(
		&m.ID, &m.CreatedAt, &m.FounderID, &m.FunderID, &m.SemanticScore, &m.RuleScore,
		&m.StageScore, &m.TotalScore, &breakdown, &tier, &m.IsViewed, &viewedAt,
	)
	if err != nil {
		return nil, err
	}

	m.QualityTier = models.QualityTier(tier)
	if viewedAt.Valid {
		t := viewedAt.Time
		m.ViewedAt = &t
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &m.ScoreBreakdown); err != nil {
			return nil, fmt.Errorf("decode score breakdown: %w", err)
		}
	}
	return &m, nil
}
