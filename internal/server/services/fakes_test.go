package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/models"
	accountsrepo "github.com/rasgroup/bagcapturer/internal/server/repositories/accounts"
	recordingsrepo "github.com/rasgroup/bagcapturer/internal/server/repositories/recordings"
	refreshtokensrepo "github.com/rasgroup/bagcapturer/internal/server/repositories/refreshtokens"
	schedulesrepo "github.com/rasgroup/bagcapturer/internal/server/repositories/schedules"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- repository fakes ---

type fakeAccountsRepo struct {
	createOut *models.Account
	createErr error

	getOut *models.Account
	getErr error

	listOut []*models.Account
	listErr error

	countOut int64
	countErr error

	deleteErr error
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return a, nil
}
func (f *fakeAccountsRepo) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeAccountsRepo) List(ctx context.Context) ([]*models.Account, error) {
	return f.listOut, f.listErr
}
func (f *fakeAccountsRepo) Count(ctx context.Context) (int64, error) {
	return f.countOut, f.countErr
}
func (f *fakeAccountsRepo) Delete(ctx context.Context, userName string) error {
	return f.deleteErr
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr error

	createErr   error
	createCalls int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.createCalls++
	return f.createErr
}
func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	return f.delErr
}

type fakeRecordingsRepo struct {
	createOut   *models.Recording
	createErr   error
	createCalls int
	lastCreated *models.Recording

	getOut *models.Recording
	getErr error

	listOut []*models.Recording
	listErr error

	finishErr error

	countsOut *recordingsrepo.StatusCounts
	countsErr error
}

func (f *fakeRecordingsRepo) Create(ctx context.Context, rec *models.Recording) (*models.Recording, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastCreated = rec
	if f.createOut != nil {
		return f.createOut, nil
	}
	return rec, nil
}
func (f *fakeRecordingsRepo) Get(ctx context.Context, id string) (*models.Recording, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeRecordingsRepo) ListRecent(ctx context.Context, limit int) ([]*models.Recording, error) {
	return f.listOut, f.listErr
}
func (f *fakeRecordingsRepo) Finish(ctx context.Context, id string, sizeBytes int64, storageKey string) error {
	return f.finishErr
}
func (f *fakeRecordingsRepo) CountByStatus(ctx context.Context) (*recordingsrepo.StatusCounts, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.countsOut, nil
}

type fakeSchedulesRepo struct {
	createOut *models.Schedule
	createErr error

	listOut []*models.Schedule
	listErr error

	enabledOut []*models.Schedule
	enabledErr error

	markCalls []string
	markErr   error

	setEnabledErr error
	deleteErr     error
}

func (f *fakeSchedulesRepo) Create(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return s, nil
}
func (f *fakeSchedulesRepo) List(ctx context.Context) ([]*models.Schedule, error) {
	return f.listOut, f.listErr
}
func (f *fakeSchedulesRepo) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	return f.enabledOut, f.enabledErr
}
func (f *fakeSchedulesRepo) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}
func (f *fakeSchedulesRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return f.setEnabledErr
}
func (f *fakeSchedulesRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

// --- fake repo manager ---

type fakeRepoManager struct {
	accounts   *fakeAccountsRepo
	refresh    *fakeRefreshRepo
	recordings *fakeRecordingsRepo
	schedules  *fakeSchedulesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.accounts }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}
func (m *fakeRepoManager) Recordings(db dbx.DBTX) recordingsrepo.Repository {
	return m.recordings
}
func (m *fakeRepoManager) Schedules(db dbx.DBTX) schedulesrepo.Repository { return m.schedules }
