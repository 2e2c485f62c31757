package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harborgate/accountd/internal/accounts/service"
	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/internal/accounts/store/drivers/sqlite"
	"github.com/harborgate/accountd/pkg/cryptox"
	"github.com/harborgate/accountd/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the store behind the account services. It is the
// composition root shared by every caller of the core (the CLI today, an
// HTTP layer tomorrow).
type Application struct {
	cfg    Config
	logger *slog.Logger
	db     store.Store

	Registration *service.RegistrationService
	Sessions     *service.SessionService
	Resets       *service.ResetService
	Users        *service.UserService
}

// New creates an Application with all dependencies initialized and
// migrations applied.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accountd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initServices()

	return app, nil
}

func (app *Application) Logger() *slog.Logger { return app.logger }

// Close releases the underlying database.
func (app *Application) Close() error { return app.db.Close() }

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	empty, err := db.Users().IsEmpty(context.Background())
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	app.logger.Info("database ready", "file", app.cfg.DatabaseFile, "empty", empty)
	return nil
}

func (app *Application) initServices() {
	app.Registration = &service.RegistrationService{Store: app.db}
	app.Sessions = &service.SessionService{
		Store:    app.db,
		TTL:      app.cfg.SessionDuration,
		Throttle: service.NewLoginThrottle(app.cfg.LoginAttempts, app.cfg.LoginWindow),
	}
	app.Resets = &service.ResetService{Store: app.db}
	app.Users = &service.UserService{Store: app.db}
}
