package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/events"
	"github.com/rasgroup/bagcapturer/internal/server/models"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/repomanager"
)

// ScheduleService manages capture schedules and, subscribed to the system
// timer, starts captures for schedules that come due.
type ScheduleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	recordings  *RecordingService
	clock       clockwork.Clock
	logger      logging.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(db *sql.DB, m repomanager.RepositoryManager, rec *RecordingService, clock clockwork.Clock, logger logging.Logger) *ScheduleService {
	return &ScheduleService{
		db:          db,
		repomanager: m,
		recordings:  rec,
		clock:       clock,
		logger:      logger.With("module", "schedules"),
	}
}

// SubscribeTo registers the service on the event registry so that every
// system timer tick triggers a due-schedule evaluation.
func (s *ScheduleService) SubscribeTo(registry *events.Registry) {
	registry.Subscribe(events.EventTimer, func(ctx context.Context, _ events.EventType) {
		s.EvaluateDue(ctx)
	})
}

// Create stores a new schedule.
func (s *ScheduleService) Create(ctx context.Context, name, topics string, interval, durationLimit time.Duration) (*models.Schedule, error) {
	schedule := &models.Schedule{
		Name:          name,
		Topics:        topics,
		Interval:      interval,
		DurationLimit: durationLimit,
		Enabled:       true,
	}
	return s.repomanager.Schedules(s.db).Create(ctx, schedule)
}

// List returns all schedules.
func (s *ScheduleService) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.repomanager.Schedules(s.db).List(ctx)
}

// SetEnabled toggles a schedule.
func (s *ScheduleService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.repomanager.Schedules(s.db).SetEnabled(ctx, id, enabled)
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Schedules(s.db).Delete(ctx, id)
}

// EvaluateDue starts a capture for every enabled schedule whose interval has
// elapsed and marks it triggered. Failures are logged and do not interrupt
// evaluation of the remaining schedules.
func (s *ScheduleService) EvaluateDue(ctx context.Context) {
	repo := s.repomanager.Schedules(s.db)

	enabled, err := repo.ListEnabled(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing schedules failed", "error", err.Error())
		return
	}

	now := s.clock.Now()
	for _, schedule := range enabled {
		if !schedule.Due(now) {
			continue
		}

		bagName := fmt.Sprintf("%s_%s.bag", schedule.Name, now.Format("20060102_150405"))
		if _, err := s.recordings.Start(ctx, bagName, schedule.Topics); err != nil {
			s.logger.Error(ctx, "scheduled capture failed to start",
				"schedule", schedule.Name, "error", err.Error())
			continue
		}
		if err := repo.MarkTriggered(ctx, schedule.ID, now); err != nil {
			s.logger.Error(ctx, "marking schedule triggered failed",
				"schedule", schedule.Name, "error", err.Error())
			continue
		}
		s.logger.Info(ctx, "scheduled capture started", "schedule", schedule.Name, "bag", bagName)
	}
}
