// Package server initializes and runs the capturer dashboard: it opens the
// database, runs migrations, wires services to the event registry, and
// starts the system timer and the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"

	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/auth"
	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/events"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/repomanager"
	"github.com/rasgroup/bagcapturer/internal/server/services"
	"github.com/rasgroup/bagcapturer/internal/server/timer"
	"github.com/rasgroup/bagcapturer/internal/web"
)

const shutdownDrainTimeout = 2 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	registry   *events.Registry
	dispatcher *timer.Dispatcher
	webServer  *web.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	clock := clockwork.NewRealClock()

	accountService := services.NewAccountService(db, m, cfg)
	recordingService := services.NewRecordingService(db, m, cfg)
	scheduleService := services.NewScheduleService(db, m, recordingService, clock, logger)
	dbadminService := services.NewDBAdminService(db)

	registry := events.NewRegistry()
	scheduleService.SubscribeTo(registry)

	dispatcher := timer.NewDispatcher(registry, clock, cfg.SystemTimerInterval, logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	pages := web.Pages{
		Console:   web.NewConsolePage(renderer, recordingService),
		Setup:     web.NewSetupPage(renderer, cfg, accountService),
		Schedule:  web.NewSchedulePage(renderer, scheduleService),
		DBBrowser: web.NewDBBrowserPage(renderer, dbadminService),
		DBQuery:   web.NewDBQueryPage(renderer, dbadminService),
	}

	router, err := web.NewRouter(renderer, logger, pages, int(cfg.ConsoleRefreshInterval.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("router error: %w", err)
	}

	gate := auth.NewGate(accountService, logger)
	webServer := web.NewServer(cfg, logger, renderer, router, gate, accountService, recordingService)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		registry:   registry,
		dispatcher: dispatcher,
		webServer:  webServer,
	}, nil
}

// openDB opens the pgx connection pool and pings it with a retry backoff,
// so the server survives the database coming up slightly later.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting capturer dashboard",
		"addr", fmt.Sprintf("%s:%d", app.config.Host, app.config.Port),
		"auth", app.config.AuthEnabled, "debug", app.config.DebugMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.webServer.ListenAndServe(); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
	defer drainCancel()
	if err := app.webServer.Shutdown(drainCtx); err != nil {
		app.logger.Error(drainCtx, "http shutdown failed", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err.Error())
	}

	app.logger.Info(context.Background(), "capturer dashboard stopped")
}
