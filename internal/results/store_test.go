package results

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func sampleResult() models.Result {
	return models.Result{
		TotalScore: 12,
		MaxScore:   16,
		Percentage: 75,
		CategoryScores: map[string]models.CategoryScore{
			"personality": {Score: 12, Max: 16},
		},
		TestType: models.TestTypePaid,
	}
}

// ==========================
// Save
// ==========================

func TestSave_InsertsRow(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectExec(`INSERT INTO test_results`).
		WithArgs(
			sqlmock.AnyArg(), "user@example.com", "paid", "talent",
			float64(12), float64(16), 75, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := store.Save(context.Background(), "user@example.com", "talent", sampleResult())
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.TestTypePaid, record.TestType)
	assert.WithinDuration(t, time.Now().UTC(), record.TakenAt, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_InsertFailure(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectExec(`INSERT INTO test_results`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Save(context.Background(), "user@example.com", "", sampleResult())
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeResultStoreFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// History
// ==========================

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	store, mock := createTestStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_email", "test_type", "category",
		"total_score", "max_score", "percentage", "category_scores", "taken_at",
	}).
		AddRow("r2", "user@example.com", "paid", "talent", 12.0, 16.0, 75, []byte(`{"personality":{"score":12,"max":16}}`), now).
		AddRow("r1", "user@example.com", "free", "personality", 4.0, 5.0, 80, []byte(`{}`), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM test_results WHERE user_email = \$1 ORDER BY taken_at DESC LIMIT \$2`).
		WithArgs("user@example.com", historyLimit).
		WillReturnRows(rows)

	records, err := store.History(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ID)
	assert.Equal(t, float64(12), records[0].CategoryScores["personality"].Score)
	assert.Equal(t, "r1", records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_EmptyIsNotAnError(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM test_results`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_email", "test_type", "category",
			"total_score", "max_score", "percentage", "category_scores", "taken_at",
		}))

	records, err := store.History(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistory_QueryFailure(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM test_results`).
		WillReturnError(sql.ErrConnDone)

	_, err := store.History(context.Background(), "user@example.com")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeResultStoreFailed))
}

// ==========================
// Schema
// ==========================

func TestEnsureSchema(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS test_results`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
