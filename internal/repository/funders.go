// internal/repository/funders.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"

	"github.com/lib/pq"
	"gonum.org/v1/gonum/floats"
)

const funderColumns = `id, created_at, updated_at, name, firm_name, bio, investment_thesis,
	preferred_industries, preferred_stages, check_size_min, check_size_max, geography_focus,
	embedding::text, embedding_text, is_active, total_matches_generated`

type FunderRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewFunderRepository(db *sql.DB, log logger.Logger) *FunderRepository {
	return &FunderRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "funders"}),
	}
}

// ListActive returns every active funder.
func (r *FunderRepository) ListActive(ctx context.Context) ([]models.Funder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+funderColumns+` FROM funders WHERE is_active = TRUE ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list funders: %w", err)
	}
	defer rows.Close()

	return scanFunders(rows)
}

// GetByID returns an active funder or ErrNotFound.
func (r *FunderRepository) GetByID(ctx context.Context, id string) (*models.Funder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+funderColumns+` FROM funders WHERE id = $1 AND is_active = TRUE`, id)

	f, err := scanFunder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: funder %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get funder %s: %w", id, err)
	}
	return f, nil
}

// GetByIDs loads the listed funders keyed by id. Unknown ids are skipped.
func (r *FunderRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Funder, error) {
	out := make(map[string]models.Funder, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+funderColumns+` FROM funders WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get funders: %w", err)
	}
	defer rows.Close()

	funders, err := scanFunders(rows)
	if err != nil {
		return nil, err
	}
	for _, f := range funders {
		out[f.ID] = f
	}
	return out, nil
}

// FindSimilar returns the funders nearest to the founder's embedding, best
// first, using the find_matching_funders function. When that query fails
// the ranking is computed in memory over all active funders.
func (r *FunderRepository) FindSimilar(ctx context.Context, founderID string, limit int) ([]models.SimilarFunder, error) {
	similar, err := r.findSimilarSQL(ctx, founderID, limit)
	if err == nil {
		return similar, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	r.logger.Warn("find_matching_funders failed, falling back to in-memory ranking", map[string]interface{}{
		"founderId": founderID,
		"error":     err,
	})

	var raw sql.NullString
	if err := r.db.QueryRowContext(ctx,
		`SELECT embedding::text FROM founders WHERE id = $1`, founderID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: founder %s", ErrNotFound, founderID)
		}
		return nil, fmt.Errorf("load founder embedding: %w", err)
	}
	embedding, err := parseVector(raw)
	if err != nil {
		return nil, err
	}
	return r.FindSimilarByEmbedding(ctx, embedding, limit)
}

func (r *FunderRepository) findSimilarSQL(ctx context.Context, founderID string, limit int) ([]models.SimilarFunder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT funder_id, semantic_score, distance FROM find_matching_funders($1, $2)`, founderID, limit)
	if err != nil {
		return nil, fmt.Errorf("find_matching_funders: %w", err)
	}
	defer rows.Close()

	type hit struct {
		id       string
		score    float64
		distance float64
	}
	var hits []hit
	var ids []string
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.score, &h.distance); err != nil {
			return nil, fmt.Errorf("scan similar funder: %w", err)
		}
		hits = append(hits, h)
		ids = append(ids, h.id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find_matching_funders: %w", err)
	}

	funders, err := r.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.SimilarFunder, 0, len(hits))
	for _, h := range hits {
		f, ok := funders[h.id]
		if !ok {
			continue
		}
		out = append(out, models.SimilarFunder{Funder: f, SemanticScore: h.score, Distance: h.distance})
	}
	return out, nil
}

// FindSimilarByEmbedding ranks active funders by cosine distance to
// embedding in memory. Funders without a comparable vector are skipped.
func (r *FunderRepository) FindSimilarByEmbedding(ctx context.Context, embedding []float64, limit int) ([]models.SimilarFunder, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	funders, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return RankBySimilarity(embedding, funders, limit), nil
}

// UpdateEmbedding stores a freshly generated embedding for a funder.
func (r *FunderRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float64, text string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE funders SET embedding = $2::vector, embedding_text = $3, updated_at = $4
		WHERE id = $1`,
		id, formatVector(embedding), nullString(text), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update funder embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update funder embedding: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: funder %s", ErrNotFound, id)
	}
	return nil
}

// RankBySimilarity orders funders by ascending cosine distance to embedding
// and keeps at most limit of them (limit <= 0 keeps all). Vectors of a
// different dimension are skipped.
func RankBySimilarity(embedding []float64, funders []models.Funder, limit int) []models.SimilarFunder {
	query := matching.PrepareVector(embedding)

	out := make([]models.SimilarFunder, 0, len(funders))
	for _, f := range funders {
		if !f.HasEmbedding() {
			continue
		}
		if len(f.Embedding) != len(query) {
			continue
		}
		sim := floats.Dot(query, matching.PrepareVector(f.Embedding))
		out = append(out, models.SimilarFunder{Funder: f, SemanticScore: sim, Distance: 1 - sim})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scanFunders(rows *sql.Rows) ([]models.Funder, error) {
	var out []models.Funder
	for rows.Next() {
		f, err := scanFunder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan funder: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanFunder(row interface{ Scan(...interface{}) error }) (*models.Funder, error) {
	var (
		f                        models.Funder
		bio, thesis              sql.NullString
		embedding, embeddingText sql.NullString
		checkMin, checkMax       sql.NullFloat64
		industries, stages, geos []string
	)

	err := row.Scan(
		&f.ID, &f.CreatedAt, &f.UpdatedAt, &f.Name, &f.FirmName, &bio, &thesis,
		pq.Array(&industries), pq.Array(&stages), &checkMin, &checkMax, pq.Array(&geos),
		&embedding, &embeddingText, &f.IsActive, &f.TotalMatchesGenerated,
	)
	if err != nil {
		return nil, err
	}

	f.Bio = bio.String
	f.InvestmentThesis = thesis.String
	f.PreferredIndustries = convert[models.Industry](industries)
	f.PreferredStages = convert[models.Stage](stages)
	f.GeographyFocus = convert[models.Geography](geos)
	f.CheckSizeMin = floatPtr(checkMin)
	f.CheckSizeMax = floatPtr(checkMax)
	f.EmbeddingText = embeddingText.String

	if f.Embedding, err = parseVector(embedding); err != nil {
		return nil, err
	}
	return &f, nil
}

func convert[T ~string](values []string) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}
