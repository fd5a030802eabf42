// internal/workers/matching/save-matches/handler_test.go
package savematches

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(&Config{Timeout: 5 * time.Second}, repository.NewMatchRepository(db), logger.NewTestLogger(t))
	return h, mock
}

func candidate(id string, total float64) matching.Candidate {
	return matching.Candidate{
		Funder: models.Funder{ID: id},
		Breakdown: models.ScoreBreakdown{
			TotalScore:  total,
			QualityTier: matching.QualityTierFor(total),
		},
	}
}

var upsertCols = []string{"id", "created_at", "is_viewed", "inserted"}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SavesBatch(t *testing.T) {
	h, mock := createTestHandler(t)
	now := time.Now()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO matches")
	prep.ExpectQuery().
		WithArgs(sqlmock.AnyArg(), "f-1", "g-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 0.92, sqlmock.AnyArg(), "Excellent").
		WillReturnRows(sqlmock.NewRows(upsertCols).AddRow("m-1", now, false, true))
	prep.ExpectQuery().
		WithArgs(sqlmock.AnyArg(), "f-1", "g-2", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 0.77, sqlmock.AnyArg(), "Good").
		WillReturnRows(sqlmock.NewRows(upsertCols).AddRow("m-2", now, false, true))
	mock.ExpectExec("UPDATE funders SET total_matches_generated").
		WithArgs(pq.Array([]string{"g-1", "g-2"})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	out, err := h.Execute(context.Background(), &Input{
		FounderID: "f-1",
		Matches:   []matching.Candidate{candidate("g-1", 0.92), candidate("g-2", 0.77)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.SavedCount)
	assert.Equal(t, []string{"m-1", "m-2"}, out.MatchIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NothingToSave(t *testing.T) {
	h, mock := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{FounderID: "f-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, out.SavedCount)
	assert.Empty(t, out.MatchIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_MissingFounder(t *testing.T) {
	h, _ := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.AsStandardError(err).Code)
}

func TestHandler_Execute_InsertFailure(t *testing.T) {
	h, mock := createTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO matches").ExpectQuery().WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{
		FounderID: "f-1",
		Matches:   []matching.Candidate{candidate("g-1", 0.92)},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, apperrors.AsStandardError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
