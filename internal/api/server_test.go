// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phalanx-matcher/internal/common/config"
	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"
)

// ==========================
// Fakes
// ==========================

type fakeMatcher struct {
	result     *matcher.Result
	err        error
	lastParams matcher.Params
	lastMode   string
}

func (f *fakeMatcher) Match(_ context.Context, _ string, p matcher.Params) (*matcher.Result, error) {
	f.lastParams, f.lastMode = p, "hybrid"
	return f.result, f.err
}

func (f *fakeMatcher) MatchRules(_ context.Context, _ string, p matcher.Params) (*matcher.Result, error) {
	f.lastParams, f.lastMode = p, "rules"
	if f.result != nil {
		res := *f.result
		res.Note = matcher.RuleOnlyNote
		return &res, f.err
	}
	return nil, f.err
}

type fakeIngestor struct {
	result *matcher.IngestResult
	err    error
	got    models.FounderProfileInput
}

func (f *fakeIngestor) Ingest(_ context.Context, in models.FounderProfileInput) (*matcher.IngestResult, error) {
	f.got = in
	return f.result, f.err
}

// ==========================
// Test Helper Functions
// ==========================

func matchingDefaults() config.MatchingConfig {
	return config.MatchingConfig{
		Weights:          matching.Weights{Semantic: 0.4, Rule: 0.4, Stage: 0.2},
		DefaultLimit:     10,
		MaxLimit:         50,
		DefaultMinScore:  0.5,
		RuleOnlyMinScore: 0.3,
	}
}

func testResult(t *testing.T) *matcher.Result {
	t.Helper()
	founder := &models.Founder{
		ID: "f-1", Name: "Ada", CompanyName: "Ledgerly",
		Industry: models.IndustryFintech, Stage: models.StageSeed,
	}
	funder := models.Funder{
		ID: "v-1", Name: "Grace", FirmName: "Hopper Ventures",
		PreferredIndustries: []models.Industry{models.IndustryFintech},
		PreferredStages:     []models.Stage{models.StageSeed},
	}
	sim := 0.9
	b, err := matching.NewDefaultScorer().Score(founder, &funder, &sim)
	require.NoError(t, err)

	return &matcher.Result{
		Founder:     founder,
		Matches:     []matching.Candidate{{Funder: funder, SemanticScore: &sim, Breakdown: b}},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = logger.NewTestLogger(t)
	}
	if deps.Matching.MaxLimit == 0 {
		deps.Matching = matchingDefaults()
	}
	srv := httptest.NewServer(NewServer(deps).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ==========================
// Health
// ==========================

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	srv := newTestServer(t, Deps{
		Environment: "test",
		Health:      func(ctx context.Context) error { return repository.HealthCheck(ctx, db) },
	})

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Environment)
	assert.Equal(t, Version, health.Version)

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()

	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&health))
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
	assert.Equal(t, "degraded", health.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReady(t *testing.T) {
	srv := newTestServer(t, Deps{Ready: func(context.Context) error { return errors.New("redis down") }})

	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPIInfo(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp, err := http.Get(srv.URL + "/api")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	algorithm := info["algorithm"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(algorithm["semantic"].(string), "40%"))
	assert.True(t, strings.HasPrefix(algorithm["stage"].(string), "20%"))
}

// ==========================
// Matching
// ==========================

func TestMatch(t *testing.T) {
	m := &fakeMatcher{result: testResult(t)}
	srv := newTestServer(t, Deps{Matcher: m})

	resp, err := http.Get(srv.URL + "/match/f-1?limit=5&minScore=0.7&qualityTier=Excellent")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, matcher.Params{Limit: 5, MinScore: 0.7, QualityTier: models.TierExcellent}, m.lastParams)
	assert.Equal(t, "f-1", body.Founder.ID)
	assert.Equal(t, "Ledgerly", body.Founder.CompanyName)
	assert.Equal(t, 1, body.TotalResults)
	assert.Equal(t, "2026-03-01T12:00:00Z", body.GeneratedAt)
	assert.Empty(t, body.Note)

	got := body.Matches[0]
	assert.Equal(t, "Hopper Ventures", got.Funder.FirmName)
	assert.Equal(t, got.Reasoning.TotalScore, got.Scores.TotalScore)
	assert.Equal(t, 0.9, got.Scores.SemanticScore)
}

func TestMatch_Defaults(t *testing.T) {
	m := &fakeMatcher{result: testResult(t)}
	srv := newTestServer(t, Deps{Matcher: m})

	resp, err := http.Get(srv.URL + "/match/f-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, matcher.Params{Limit: 10, MinScore: 0.5}, m.lastParams)

	resp, err = http.Get(srv.URL + "/match-rules/f-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "rules", m.lastMode)
	assert.Equal(t, matcher.Params{Limit: 10, MinScore: 0.3}, m.lastParams)

	var body MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, matcher.RuleOnlyNote, body.Note)
}

func TestMatch_InvalidParams(t *testing.T) {
	srv := newTestServer(t, Deps{Matcher: &fakeMatcher{}})

	for _, query := range []string{
		"limit=0", "limit=51", "limit=ten",
		"minScore=-0.1", "minScore=1.5", "minScore=high",
		"qualityTier=Amazing",
	} {
		t.Run(query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/match/f-1?" + query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_MATCH_PARAMS", decodeError(t, resp).Error)
		})
	}
}

func TestMatch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"founder missing", apperrors.NewFounderNotFoundError("f-1"), http.StatusNotFound, "FOUNDER_NOT_FOUND"},
		{"no embedding", apperrors.NewEmbeddingMissingError("f-1"), http.StatusBadRequest, "EMBEDDING_MISSING"},
		{"search down", apperrors.NewSearchQueryFailedError("find_similar_funders", errors.New("boom")), http.StatusInternalServerError, "SEARCH_QUERY_FAILED"},
		{"unexpected", errors.New("secret stack trace"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, Deps{Matcher: &fakeMatcher{err: tt.err}})

			resp, err := http.Get(srv.URL + "/match/f-1")
			require.NoError(t, err)
			defer resp.Body.Close()

			body := decodeError(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.status, body.Status)
			if tt.status >= 500 {
				assert.Nil(t, body.Details)
			}
		})
	}
}

// ==========================
// Ingest
// ==========================

func TestIngestFounder(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ing := &fakeIngestor{result: &matcher.IngestResult{ID: "f-9", EmbeddingGenerated: true, ProfileCompleteness: 0.89, CreatedAt: created}}
	srv := newTestServer(t, Deps{Ingestor: ing})

	resp, err := http.Post(srv.URL+"/ingest/founder", "application/json",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","industry":"Fintech","stage":"Seed","seeking_amount_min":100}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.IndustryFintech, ing.got.Industry)
	require.NotNil(t, ing.got.SeekingAmountMin)
	assert.Equal(t, 100.0, *ing.got.SeekingAmountMin)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "f-9", body["id"])
	assert.Equal(t, true, body["embedding_generated"])
	assert.Equal(t, 0.89, body["profile_completeness"])
}

func TestIngestFounder_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, Deps{Ingestor: &fakeIngestor{}})
		resp, err := http.Post(srv.URL+"/ingest/founder", "application/json", strings.NewReader(`{"name":`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown field", func(t *testing.T) {
		srv := newTestServer(t, Deps{Ingestor: &fakeIngestor{}})
		resp, err := http.Post(srv.URL+"/ingest/founder", "application/json", strings.NewReader(`{"nickname":"x"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Error)
	})

	t.Run("duplicate", func(t *testing.T) {
		srv := newTestServer(t, Deps{Ingestor: &fakeIngestor{err: apperrors.NewDuplicateFounderError("ada@example.com")}})
		resp, err := http.Post(srv.URL+"/ingest/founder", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		body := decodeError(t, resp)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_FOUNDER", body.Error)
		assert.Equal(t, "email: ada@example.com", body.Details["reason"])
	})
}

// ==========================
// Stored matches
// ==========================

var matchCols = []string{
	"id", "created_at", "founder_id", "funder_id", "semantic_score", "rule_score",
	"stage_score", "total_score", "score_breakdown", "quality_tier", "is_viewed", "viewed_at",
}

func TestStoredMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	srv := newTestServer(t, Deps{Matches: repository.NewMatchRepository(db)})

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM matches").
		WithArgs("f-1", 0.75, 20).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow("m-1", now, "f-1", "v-1", 0.9, 0.8, 1.0, 0.88, []byte(`{"total_score":0.88,"quality_tier":"Good"}`), "Good", false, nil))
	mock.ExpectQuery("COUNT").
		WithArgs("f-1", "Excellent", "Good", "Fair", "Poor").
		WillReturnRows(sqlmock.NewRows([]string{"total", "excellent", "good", "fair", "poor", "avg"}).
			AddRow(3, 0, 1, 1, 1, 0.61))

	resp, err := http.Get(srv.URL + "/founders/f-1/matches?limit=20&minScore=0.75")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body StoredMatchesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Matches, 1)
	assert.Equal(t, models.TierGood, body.Matches[0].QualityTier)
	assert.Equal(t, 0.88, body.Matches[0].ScoreBreakdown.TotalScore)
	assert.Equal(t, 3, body.Stats.TotalMatches)
	assert.Equal(t, 0.61, body.Stats.AvgScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoredMatches_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	srv := newTestServer(t, Deps{Matches: repository.NewMatchRepository(db)})
	mock.ExpectQuery("SELECT (.+) FROM matches").WillReturnError(errors.New("relation does not exist"))

	resp, err := http.Get(srv.URL + "/founders/f-1/matches")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "QUERY_EXECUTION_FAILED", decodeError(t, resp).Error)
}

func TestMarkViewed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	srv := newTestServer(t, Deps{Matches: repository.NewMatchRepository(db)})

	mock.ExpectExec("UPDATE matches SET is_viewed").
		WithArgs("m-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE matches SET is_viewed").
		WithArgs("m-404", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, err := http.Post(srv.URL+"/matches/m-1/viewed", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/matches/m-404/viewed", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MATCH_NOT_FOUND", decodeError(t, resp).Error)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Deps{Matcher: &fakeMatcher{result: testResult(t)}})

	resp, err := http.Get(srv.URL + "/match/f-1")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), `match_requests_total{endpoint="/match/{founderId}",status="200"}`)
}
