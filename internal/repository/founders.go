// internal/repository/founders.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"phalanx-matcher/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const founderColumns = `id, created_at, updated_at, name, email, company_name, company_description,
	industry, stage, seeking_amount_min, seeking_amount_max, geography,
	embedding::text, embedding_text, profile_completeness, is_active`

type FounderRepository struct {
	db *sql.DB
}

func NewFounderRepository(db *sql.DB) *FounderRepository {
	return &FounderRepository{db: db}
}

// GetByID returns an active founder or ErrNotFound.
func (r *FounderRepository) GetByID(ctx context.Context, id string) (*models.Founder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+founderColumns+` FROM founders WHERE id = $1 AND is_active = TRUE`, id)

	f, err := scanFounder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: founder %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get founder %s: %w", id, err)
	}
	return f, nil
}

// Create inserts f with a fresh id. A repeated email yields ErrDuplicate.
func (r *FounderRepository) Create(ctx context.Context, f *models.Founder) (*models.Founder, error) {
	out := *f
	out.ID = uuid.New().String()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO founders (
			id, name, email, company_name, company_description, industry, stage,
			seeking_amount_min, seeking_amount_max, geography,
			embedding, embedding_text, profile_completeness, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::vector, $12, $13, $14)
		RETURNING created_at, updated_at`,
		out.ID,
		out.Name,
		out.Email,
		nullString(out.CompanyName),
		nullString(out.CompanyDescription),
		string(out.Industry),
		string(out.Stage),
		nullFloat(out.SeekingAmountMin),
		nullFloat(out.SeekingAmountMax),
		nullString(string(out.Geography)),
		formatVector(out.Embedding),
		nullString(out.EmbeddingText),
		out.ProfileCompleteness,
		out.IsActive,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: founder email %s", ErrDuplicate, f.Email)
		}
		return nil, fmt.Errorf("insert founder: %w", err)
	}
	return &out, nil
}

// UpdateEmbedding stores a freshly generated embedding for a founder.
func (r *FounderRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float64, text string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE founders SET embedding = $2::vector, embedding_text = $3, updated_at = $4
		WHERE id = $1`,
		id, formatVector(embedding), nullString(text), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update founder embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update founder embedding: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: founder %s", ErrNotFound, id)
	}
	return nil
}

// ListWithoutEmbedding returns up to limit active founders stored without a
// vector, oldest first.
func (r *FounderRepository) ListWithoutEmbedding(ctx context.Context, limit int) ([]models.Founder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+founderColumns+` FROM founders
		WHERE is_active = TRUE AND embedding IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list founders without embedding: %w", err)
	}
	defer rows.Close()

	var out []models.Founder
	for rows.Next() {
		f, err := scanFounder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan founder: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func scanFounder(row interface{ Scan(...interface{}) error }) (*models.Founder, error) {
	var (
		f                         models.Founder
		company, description, geo sql.NullString
		embedding, embeddingText  sql.NullString
		seekingMin, seekingMax    sql.NullFloat64
		industry, stage           string
	)

	err := row.Scan(
		&f.ID, &f.CreatedAt, &f.UpdatedAt, &f.Name, &f.Email, &company, &description,
		&industry, &stage, &seekingMin, &seekingMax, &geo,
		&embedding, &embeddingText, &f.ProfileCompleteness, &f.IsActive,
	)
	if err != nil {
		return nil, err
	}

	f.CompanyName = company.String
	f.CompanyDescription = description.String
	f.Industry = models.Industry(industry)
	f.Stage = models.Stage(stage)
	f.SeekingAmountMin = floatPtr(seekingMin)
	f.SeekingAmountMax = floatPtr(seekingMax)
	f.Geography = models.Geography(geo.String)
	f.EmbeddingText = embeddingText.String

	if f.Embedding, err = parseVector(embedding); err != nil {
		return nil, err
	}
	return &f, nil
}
