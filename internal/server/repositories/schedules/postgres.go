package schedules

import (
	"context"
	"fmt"
	"time"

	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// PostgresRepository implements the schedules Repository over dbx.DBTX.
// Intervals are stored as whole seconds.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {

	query :=
		`INSERT INTO schedules (name, topics, interval_seconds, duration_limit_seconds, enabled)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		schedule.Name, schedule.Topics,
		int64(schedule.Interval.Seconds()), int64(schedule.DurationLimit.Seconds()),
		schedule.Enabled).Scan(&schedule.ID, &schedule.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return schedule, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Schedule, error) {
	return r.list(ctx, false)
}

func (r *PostgresRepository) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	return r.list(ctx, true)
}

func (r *PostgresRepository) list(ctx context.Context, enabledOnly bool) ([]*models.Schedule, error) {
	query :=
		`SELECT id, name, topics, interval_seconds, duration_limit_seconds, enabled, last_triggered, created_at
		 FROM schedules
		 `
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Schedule
	for rows.Next() {
		s := &models.Schedule{}
		var intervalSec, limitSec int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Topics, &intervalSec, &limitSec,
			&s.Enabled, &s.LastTriggered, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.Interval = time.Duration(intervalSec) * time.Second
		s.DurationLimit = time.Duration(limitSec) * time.Second
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE schedules SET last_triggered = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query :=
		`UPDATE schedules SET enabled = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, enabled); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM schedules
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
