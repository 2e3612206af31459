// Package schedules declares the repository contract for capture schedules.
package schedules

import (
	"context"
	"time"

	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// Repository defines persistence operations for capture schedules.
type Repository interface {
	// Create stores a new schedule and returns it with its generated ID.
	Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)

	// List returns all schedules ordered by name.
	List(ctx context.Context) ([]*models.Schedule, error)

	// ListEnabled returns enabled schedules only.
	ListEnabled(ctx context.Context) ([]*models.Schedule, error)

	// MarkTriggered records the time a schedule last fired.
	MarkTriggered(ctx context.Context, id string, at time.Time) error

	// SetEnabled toggles a schedule on or off.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Delete removes a schedule by ID.
	Delete(ctx context.Context, id string) error
}
