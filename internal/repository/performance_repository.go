package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

const errScanPerformanceRecord = "failed to scan performance record: %w"

// PostgresPerformanceRepository implements PerformanceRepository for PostgreSQL
type PostgresPerformanceRepository struct {
	db *database.DB
}

// NewPostgresPerformanceRepository creates a new performance repository
func NewPostgresPerformanceRepository(db *database.DB) PerformanceRepository {
	return &PostgresPerformanceRepository{db: db}
}

// Append inserts one performance record. The history is append-only; records
// are never updated or deleted.
func (r *PostgresPerformanceRepository) Append(ctx context.Context, record *models.PerformanceRecord) error {
	query := `
		INSERT INTO performance_records (id, game_id, outcome, nn_loss, vae_loss, feedback_triggered, alpha, attempts, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.GameID, record.Outcome, record.NNLoss, record.VAELoss,
		record.FeedbackTriggered, record.Alpha, record.Attempts, record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append performance record: %w", err)
	}

	return nil
}

// GetRecent retrieves the newest records, newest first
func (r *PostgresPerformanceRepository) GetRecent(ctx context.Context, limit int) ([]*models.PerformanceRecord, error) {
	query := `
		SELECT id, game_id, outcome, nn_loss, vae_loss, feedback_triggered, alpha, attempts, recorded_at
		FROM performance_records
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent performance records: %w", err)
	}
	defer rows.Close()

	return scanPerformanceRecords(rows)
}

// GetByDateRange retrieves records within a date range, oldest first
func (r *PostgresPerformanceRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PerformanceRecord, error) {
	query := `
		SELECT id, game_id, outcome, nn_loss, vae_loss, feedback_triggered, alpha, attempts, recorded_at
		FROM performance_records
		WHERE recorded_at >= $1 AND recorded_at <= $2
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance records by date range: %w", err)
	}
	defer rows.Close()

	return scanPerformanceRecords(rows)
}

func scanPerformanceRecords(rows pgx.Rows) ([]*models.PerformanceRecord, error) {
	var records []*models.PerformanceRecord
	for rows.Next() {
		record := &models.PerformanceRecord{}
		err := rows.Scan(
			&record.ID, &record.GameID, &record.Outcome, &record.NNLoss, &record.VAELoss,
			&record.FeedbackTriggered, &record.Alpha, &record.Attempts, &record.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPerformanceRecord, err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
