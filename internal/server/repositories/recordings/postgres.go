package recordings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// PostgresRepository implements the recordings Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Recording) (*models.Recording, error) {

	query :=
		`INSERT INTO recordings (bag_name, topics, status, storage_key, started_at)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.BagName, rec.Topics, rec.Status, rec.StorageKey, rec.StartedAt).Scan(&rec.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Recording, error) {
	query :=
		`SELECT id, bag_name, topics, size_bytes, status, storage_key, started_at, finished_at
		 FROM recordings
		 WHERE id = $1
		 `

	rec := &models.Recording{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.BagName, &rec.Topics, &rec.SizeBytes,
		&rec.Status, &rec.StorageKey, &rec.StartedAt, &rec.FinishedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.Recording, error) {
	query :=
		`SELECT id, bag_name, topics, size_bytes, status, storage_key, started_at, finished_at
		 FROM recordings
		 ORDER BY started_at DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Recording
	for rows.Next() {
		rec := &models.Recording{}
		if err := rows.Scan(&rec.ID, &rec.BagName, &rec.Topics, &rec.SizeBytes,
			&rec.Status, &rec.StorageKey, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Finish(ctx context.Context, id string, sizeBytes int64, storageKey string) error {
	query :=
		`UPDATE recordings
		 SET status = $2, size_bytes = $3, storage_key = $4, finished_at = $5
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id,
		models.RecordingStatusFinished, sizeBytes, storageKey, time.Now()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	query :=
		`SELECT status, COUNT(*) FROM recordings
		 GROUP BY status
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := &StatusCounts{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		switch status {
		case models.RecordingStatusRunning:
			counts.Running = n
		case models.RecordingStatusFinished:
			counts.Finished = n
		case models.RecordingStatusFailed:
			counts.Failed = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}
