// internal/results/store.go
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/models"
)

const historyLimit = 100

// Record is one persisted submission.
type Record struct {
	ID             string                          `json:"id"`
	UserEmail      string                          `json:"userEmail"`
	TestType       models.TestType                 `json:"testType"`
	Category       string                          `json:"category"`
	TotalScore     float64                         `json:"totalScore"`
	MaxScore       float64                         `json:"maxScore"`
	Percentage     int                             `json:"percentage"`
	CategoryScores map[string]models.CategoryScore `json:"categoryScores"`
	TakenAt        time.Time                       `json:"takenAt"`
}

// Store persists aggregated results in Postgres.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "results"}),
	}
}

// EnsureSchema creates the results table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS test_results (
			id              UUID PRIMARY KEY,
			user_email      TEXT NOT NULL,
			test_type       TEXT NOT NULL,
			category        TEXT NOT NULL DEFAULT '',
			total_score     DOUBLE PRECISION NOT NULL,
			max_score       DOUBLE PRECISION NOT NULL,
			percentage      INTEGER NOT NULL,
			category_scores JSONB NOT NULL DEFAULT '{}',
			taken_at        TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// Save records a submission and returns the stored row.
func (s *Store) Save(ctx context.Context, userEmail, category string, result models.Result) (*Record, error) {
	record := &Record{
		ID:             uuid.New().String(),
		UserEmail:      userEmail,
		TestType:       result.TestType,
		Category:       category,
		TotalScore:     result.TotalScore,
		MaxScore:       result.MaxScore,
		Percentage:     result.Percentage,
		CategoryScores: result.CategoryScores,
		TakenAt:        time.Now().UTC(),
	}

	scoresJSON, err := json.Marshal(record.CategoryScores)
	if err != nil {
		return nil, stderrors.NewResultStoreFailedError(err)
	}

	query := `INSERT INTO test_results
		(id, user_email, test_type, category, total_score, max_score, percentage, category_scores, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.UserEmail, string(record.TestType), record.Category,
		record.TotalScore, record.MaxScore, record.Percentage, scoresJSON, record.TakenAt,
	)
	if err != nil {
		s.logger.Error("result insert failed", map[string]interface{}{
			"userEmail": userEmail,
			"testType":  string(result.TestType),
			"error":     err.Error(),
		})
		return nil, stderrors.NewResultStoreFailedError(err)
	}

	return record, nil
}

// History returns the caller's results, newest first, capped at 100 rows.
func (s *Store) History(ctx context.Context, userEmail string) ([]Record, error) {
	query := `SELECT id, user_email, test_type, category, total_score, max_score, percentage, category_scores, taken_at
		FROM test_results
		WHERE user_email = $1
		ORDER BY taken_at DESC
		LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, userEmail, historyLimit)
	if err != nil {
		return nil, stderrors.NewResultStoreFailedError(err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var record Record
		var scoresJSON []byte
		err := rows.Scan(
			&record.ID, &record.UserEmail, &record.TestType, &record.Category,
			&record.TotalScore, &record.MaxScore, &record.Percentage, &scoresJSON, &record.TakenAt,
		)
		if err != nil {
			return nil, stderrors.NewResultStoreFailedError(err)
		}
		if len(scoresJSON) > 0 {
			if err := json.Unmarshal(scoresJSON, &record.CategoryScores); err != nil {
				s.logger.Warn("unreadable category scores", map[string]interface{}{
					"resultId": record.ID,
					"error":    err.Error(),
				})
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewResultStoreFailedError(err)
	}

	return records, nil
}
