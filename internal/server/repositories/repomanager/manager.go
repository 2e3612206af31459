// Package repomanager wires repository implementations to database handles.
// Services hold a manager and ask it for repositories bound either to the
// shared *sql.DB or to a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/accounts"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/recordings"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/refreshtokens"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/schedules"
)

// RepositoryManager produces repositories bound to a DBTX and runs schema
// migrations.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Recordings(db dbx.DBTX) recordings.Repository
	Schedules(db dbx.DBTX) schedules.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
