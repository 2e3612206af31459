// Package accounts declares the repository contract for dashboard login
// accounts.
package accounts

import (
	"context"

	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	// Create stores a new account and returns it with its generated ID.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByUserName looks up an account by username. Implementations return
	// a not-found error when the account is absent.
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)

	// List returns all accounts ordered by username.
	List(ctx context.Context) ([]*models.Account, error)

	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int64, error)

	// Delete removes an account by username.
	Delete(ctx context.Context, userName string) error
}
