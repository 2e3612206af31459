package repomanager

import (
	"context"
	"database/sql"

	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/server/migrations"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/accounts"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/recordings"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/refreshtokens"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/schedules"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager is the production RepositoryManager over pgx.
type PostgresRepositoryManager struct {
}

// NewPostgresRepositoryManager constructs a PostgresRepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Recordings(db dbx.DBTX) recordings.Repository {
	return recordings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Schedules(db dbx.DBTX) schedules.Repository {
	return schedules.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
