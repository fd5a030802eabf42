// internal/repository/repository_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var founderCols = []string{
	"id", "created_at", "updated_at", "name", "email", "company_name", "company_description",
	"industry", "stage", "seeking_amount_min", "seeking_amount_max", "geography",
	"embedding", "embedding_text", "profile_completeness", "is_active",
}

var funderCols = []string{
	"id", "created_at", "updated_at", "name", "firm_name", "bio", "investment_thesis",
	"preferred_industries", "preferred_stages", "check_size_min", "check_size_max", "geography_focus",
	"embedding", "embedding_text", "is_active", "total_matches_generated",
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func funderRow(rows *sqlmock.Rows, id, embedding string) *sqlmock.Rows {
	var emb interface{}
	if embedding != "" {
		emb = embedding
	}
	return rows.AddRow(
		id, now, now, "Funder "+id, "Firm "+id, "bio", "thesis",
		`{Fintech,"Enterprise SaaS"}`, "{Seed}", 50.0, 300.0, "{Global}",
		emb, nil, true, 0,
	)
}

// ==========================
// Vector helpers
// ==========================

func TestVectorRoundTrip(t *testing.T) {
	lit := formatVector([]float64{0.5, -1, 1e-7})
	assert.Equal(t, "[0.5,-1,1e-07]", lit)

	v, err := parseVector(sql.NullString{String: lit.(string), Valid: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1, 1e-7}, v)

	assert.Nil(t, formatVector(nil))
	v, err = parseVector(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseVector(sql.NullString{String: "[1,x]", Valid: true})
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	require.NoError(t, HealthCheck(context.Background(), db))

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	assert.Error(t, HealthCheck(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Founders
// ==========================

func TestFounderRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFounderRepository(db)

	mock.ExpectQuery(`SELECT .* FROM founders WHERE id = \$1 AND is_active = TRUE`).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows(founderCols).AddRow(
			"f-1", now, now, "Ada", "ada@example.com", "Ledgerly", nil,
			"Fintech", "Seed", 100.0, nil, "North America",
			"[0.1,0.2]", "Ledgerly. Industry: Fintech.", 0.78, true,
		))

	f, err := repo.GetByID(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "Ledgerly", f.CompanyName)
	assert.Empty(t, f.CompanyDescription)
	assert.Equal(t, models.IndustryFintech, f.Industry)
	assert.Equal(t, 100.0, *f.SeekingAmountMin)
	assert.Nil(t, f.SeekingAmountMax)
	assert.Equal(t, []float64{0.1, 0.2}, f.Embedding)

	mock.ExpectQuery("SELECT .* FROM founders").WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFounderRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFounderRepository(db)

	in := &models.Founder{
		Name:                "Ada",
		Email:               "ada@example.com",
		Industry:            models.IndustryFintech,
		Stage:               models.StageSeed,
		Embedding:           []float64{1, 0},
		ProfileCompleteness: 0.56,
		IsActive:            true,
	}

	mock.ExpectQuery("INSERT INTO founders").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", nil, nil, "Fintech", "Seed",
			nil, nil, nil, "[1,0]", nil, 0.56, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	out, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, now, out.CreatedAt)
	assert.Empty(t, in.ID, "input must not be mutated")

	mock.ExpectQuery("INSERT INTO founders").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	_, err = repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicate)

	mock.ExpectQuery("INSERT INTO founders").WillReturnError(errors.New("disk full"))
	_, err = repo.Create(context.Background(), in)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFounderRepository_UpdateEmbedding(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFounderRepository(db)

	mock.ExpectExec("UPDATE founders SET embedding").
		WithArgs("f-1", "[0.25]", "text", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateEmbedding(context.Background(), "f-1", []float64{0.25}, "text"))

	mock.ExpectExec("UPDATE founders SET embedding").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateEmbedding(context.Background(), "nope", []float64{0.25}, "text"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFounderRepository_ListWithoutEmbedding(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFounderRepository(db)

	mock.ExpectQuery(`SELECT .* FROM founders\s+WHERE is_active = TRUE AND embedding IS NULL`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(founderCols).AddRow(
			"f-9", now, now, "Ada", "ada@example.com", nil, nil,
			"Fintech", "Seed", nil, nil, nil,
			nil, nil, 0.44, true,
		))

	founders, err := repo.ListWithoutEmbedding(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, founders, 1)
	assert.Equal(t, "f-9", founders[0].ID)
	assert.False(t, founders[0].HasEmbedding())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Funders
// ==========================

func TestFunderRepository_ListActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFunderRepository(db, logger.NewTestLogger(t))

	rows := sqlmock.NewRows(funderCols)
	funderRow(rows, "g-1", "[1,0]")
	funderRow(rows, "g-2", "")
	mock.ExpectQuery("SELECT .* FROM funders WHERE is_active = TRUE").WillReturnRows(rows)

	funders, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, funders, 2)

	assert.Equal(t, []models.Industry{models.IndustryFintech, models.IndustryEnterpriseSaaS}, funders[0].PreferredIndustries)
	assert.Equal(t, []models.Stage{models.StageSeed}, funders[0].PreferredStages)
	assert.True(t, funders[0].InvestsGlobally())
	assert.Equal(t, 300.0, *funders[0].CheckSizeMax)
	assert.True(t, funders[0].HasEmbedding())
	assert.False(t, funders[1].HasEmbedding())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFunderRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFunderRepository(db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT .* FROM funders WHERE id = \\$1").WithArgs("g-x").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "g-x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFunderRepository_FindSimilar(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFunderRepository(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`SELECT funder_id, semantic_score, distance FROM find_matching_funders\(\$1, \$2\)`).
		WithArgs("f-1", 4).
		WillReturnRows(sqlmock.NewRows([]string{"funder_id", "semantic_score", "distance"}).
			AddRow("g-2", 0.91, 0.09).
			AddRow("g-1", 0.72, 0.28).
			AddRow("g-gone", 0.5, 0.5))

	rows := sqlmock.NewRows(funderCols)
	funderRow(rows, "g-1", "[1,0]")
	funderRow(rows, "g-2", "[0,1]")
	mock.ExpectQuery(`SELECT .* FROM funders WHERE id = ANY\(\$1\)`).WillReturnRows(rows)

	similar, err := repo.FindSimilar(context.Background(), "f-1", 4)
	require.NoError(t, err)
	require.Len(t, similar, 2)

	assert.Equal(t, "g-2", similar[0].Funder.ID)
	assert.Equal(t, 0.91, similar[0].SemanticScore)
	assert.Equal(t, 0.09, similar[0].Distance)
	assert.Equal(t, "g-1", similar[1].Funder.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFunderRepository_FindSimilar_FallsBackInMemory(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFunderRepository(db, logger.NewTestLogger(t))

	mock.ExpectQuery("find_matching_funders").WillReturnError(errors.New("function does not exist"))
	mock.ExpectQuery(`SELECT embedding::text FROM founders WHERE id = \$1`).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"embedding"}).AddRow("[1,0]"))

	rows := sqlmock.NewRows(funderCols)
	funderRow(rows, "far", "[0,1]")
	funderRow(rows, "none", "")
	funderRow(rows, "near", "[0.9,0.1]")
	mock.ExpectQuery("SELECT .* FROM funders WHERE is_active = TRUE").WillReturnRows(rows)

	similar, err := repo.FindSimilar(context.Background(), "f-1", 5)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, "near", similar[0].Funder.ID)
	assert.Equal(t, "far", similar[1].Funder.ID)
	assert.InDelta(t, 1.0, similar[1].Distance, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRankBySimilarity(t *testing.T) {
	funders := []models.Funder{
		{ID: "orthogonal", Embedding: []float64{0, 1, 0}},
		{ID: "same", Embedding: []float64{2, 0, 0}},
		{ID: "opposite", Embedding: []float64{-1, 0, 0}},
		{ID: "wrong-dims", Embedding: []float64{1, 0}},
		{ID: "no-vector"},
	}

	got := RankBySimilarity([]float64{1, 0, 0}, funders, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "same", got[0].Funder.ID)
	assert.InDelta(t, 0.0, got[0].Distance, 1e-9)
	assert.Equal(t, "orthogonal", got[1].Funder.ID)
	assert.Equal(t, "opposite", got[2].Funder.ID)
	assert.InDelta(t, 2.0, got[2].Distance, 1e-9)

	assert.Len(t, RankBySimilarity([]float64{1, 0, 0}, funders, 1), 1)
}

func TestRankBySimilarity_MatchesCosineSimilarity(t *testing.T) {
	query := []float64{3, -1, 2, 0.5}
	funders := []models.Funder{
		{ID: "a", Embedding: []float64{1, 2, 3, 4}},
		{ID: "b", Embedding: []float64{6, -2, 4, 1}},
		{ID: "c", Embedding: []float64{-0.5, 0.1, 0.7, -2}},
		{ID: "zero", Embedding: []float64{0, 0, 0, 0}},
	}

	got := RankBySimilarity(query, funders, 0)
	require.Len(t, got, 4)
	assert.Equal(t, "b", got[0].Funder.ID)
	for i, sf := range got {
		want, err := matching.CosineSimilarity(query, sf.Funder.Embedding)
		require.NoError(t, err)
		assert.InDelta(t, want, sf.SemanticScore, 1e-12, sf.Funder.ID)
		assert.InDelta(t, 1-want, sf.Distance, 1e-12, sf.Funder.ID)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Distance, sf.Distance)
		}
	}
}

// ==========================
// Matches
// ==========================

func testCandidate(t *testing.T, funderID string, semantic float64) matching.Candidate {
	t.Helper()
	founder := &models.Founder{
		Name: "Ada", Email: "ada@example.com", Industry: models.IndustryFintech, Stage: models.StageSeed,
	}
	funder := models.Funder{
		ID: funderID, PreferredIndustries: []models.Industry{models.IndustryFintech},
		PreferredStages: []models.Stage{models.StageSeed},
	}
	b, err := matching.NewDefaultScorer().Score(founder, &funder, &semantic)
	require.NoError(t, err)
	return matching.Candidate{Funder: funder, SemanticScore: &semantic, Breakdown: b}
}

func TestMatchRepository_SaveBatch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRepository(db)

	candidates := []matching.Candidate{testCandidate(t, "g-1", 0.9), testCandidate(t, "g-2", 0.4)}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO matches")
	prep.ExpectQuery().
		WithArgs(sqlmock.AnyArg(), "f-1", "g-1", 0.9, sqlmock.AnyArg(), 1.0,
			candidates[0].Breakdown.TotalScore, sqlmock.AnyArg(), string(candidates[0].Breakdown.QualityTier)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "is_viewed", "inserted"}).
			AddRow("m-1", now, false, true))
	prep.ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "is_viewed", "inserted"}).
			AddRow("m-2", now, true, false))
	mock.ExpectExec("UPDATE funders SET total_matches_generated").
		WithArgs(pq.Array([]string{"g-1"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.SaveBatch(context.Background(), "f-1", candidates)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "m-1", saved[0].ID)
	assert.Equal(t, candidates[0].Breakdown, saved[0].ScoreBreakdown)
	assert.True(t, saved[1].IsViewed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_SaveBatch_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO matches").ExpectQuery().WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := repo.SaveBatch(context.Background(), "f-1", []matching.Candidate{testCandidate(t, "g-1", 0.9)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert match")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_SaveBatch_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	saved, err := NewMatchRepository(db).SaveBatch(context.Background(), "f-1", nil)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_ListForFounder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRepository(db)

	c := testCandidate(t, "g-1", 0.9)
	breakdown := []byte(`{"semantic":{"score":0.9,"weight":0.4,"contribution":0.36,"reasoning":"x"},"total_score":0.96,"quality_tier":"Excellent"}`)

	mock.ExpectQuery(`SELECT .* FROM matches\s+WHERE founder_id = \$1 AND total_score >= \$2`).
		WithArgs("f-1", 0.5, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_at", "founder_id", "funder_id", "semantic_score", "rule_score",
			"stage_score", "total_score", "score_breakdown", "quality_tier", "is_viewed", "viewed_at",
		}).AddRow("m-1", now, "f-1", c.Funder.ID, 0.9, 0.9, 1.0, 0.96, breakdown, "Excellent", true, now))

	matches, err := repo.ListForFounder(context.Background(), "f-1", 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.TierExcellent, matches[0].QualityTier)
	assert.Equal(t, 0.36, matches[0].ScoreBreakdown.Semantic.Contribution)
	require.NotNil(t, matches[0].ViewedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_ExistsAndMarkViewed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("f-1", "g-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := repo.Exists(context.Background(), "f-1", "g-1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectExec("UPDATE matches SET is_viewed = TRUE").WithArgs("m-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkViewed(context.Background(), "m-1"))

	mock.ExpectExec("UPDATE matches SET is_viewed = TRUE").WithArgs("m-404", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkViewed(context.Background(), "m-404"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_Stats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery("SELECT\\s+COUNT\\(\\*\\)").
		WithArgs("f-1", "Excellent", "Good", "Fair", "Poor").
		WillReturnRows(sqlmock.NewRows([]string{"total", "e", "g", "f", "p", "avg"}).
			AddRow(5, 1, 2, 1, 1, 0.71))

	stats, err := repo.Stats(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStats{
		TotalMatches: 5, ExcellentCount: 1, GoodCount: 2, FairCount: 1, PoorCount: 1, AvgScore: 0.71,
	}, stats)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFunderRepository_UpdateEmbedding(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFunderRepository(db, logger.NewTestLogger(t))

	mock.ExpectExec("UPDATE funders SET embedding").
		WithArgs("g-1", "[0.5,0.5]", "Firm: Acme", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateEmbedding(context.Background(), "g-1", []float64{0.5, 0.5}, "Firm: Acme"))

	mock.ExpectExec("UPDATE funders SET embedding").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateEmbedding(context.Background(), "gone", []float64{0.5}, ""), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
