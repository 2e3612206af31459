// Package recordings declares the repository contract for captured bag-file
// metadata.
package recordings

import (
	"context"

	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// StatusCounts aggregates recordings by status for the console page.
type StatusCounts struct {
	Running  int64
	Finished int64
	Failed   int64
}

// Repository defines persistence operations for recordings.
type Repository interface {
	// Create stores a new recording and returns it with its generated ID.
	Create(ctx context.Context, rec *models.Recording) (*models.Recording, error)

	// Get looks up a recording by ID. Implementations return a not-found
	// error when the recording is absent.
	Get(ctx context.Context, id string) (*models.Recording, error)

	// ListRecent returns at most limit recordings, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.Recording, error)

	// Finish marks a recording finished and records its final size and
	// storage key.
	Finish(ctx context.Context, id string, sizeBytes int64, storageKey string) error

	// CountByStatus aggregates recording counts per status.
	CountByStatus(ctx context.Context) (*StatusCounts, error)
}
