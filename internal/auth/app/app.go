package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	httpapi "github.com/aussiebroadwan/bookly/internal/auth/http"
	"github.com/aussiebroadwan/bookly/internal/auth/mailer"
	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	blocklist blocklist.Blocklist
	codec     *jwtx.Codec
	outbox    *mailer.Outbox

	// Services
	authenticator  *service.Authenticator
	accountService *service.AccountService
	guard          *service.Guard

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Refusing to run without a signing secret is deliberate: generating one
	// on the fly would invalidate every session on restart.
	if cfg.SecretKey == "" {
		return nil, errors.New("AUTH_SECRET_KEY must be set")
	}

	codec, err := jwtx.NewCodec([]byte(cfg.SecretKey), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initBlocklist(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMail()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.outbox.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Drain queued mail before closing anything it might need
	app.outbox.Stop()

	if err := app.blocklist.Close(); err != nil {
		app.logger.Error("error closing blocklist", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initBlocklist connects the revocation registry. Without a Redis URL the
// registry lives in process memory, which is fine for dev but loses
// revocations on restart.
func (app *Application) initBlocklist() error {
	if app.cfg.RedisURL == "" {
		app.logger.Warn("REDIS_URL not set, using in-memory revocation registry")
		app.blocklist = blocklist.NewMemoryBlocklist()
		return nil
	}

	bl, err := blocklist.NewRedisBlocklist(context.Background(), app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect revocation registry: %w", err)
	}
	app.blocklist = bl
	app.logger.Info("revocation registry connected")
	return nil
}

// initMail wires the outbox. Without an SMTP host mail is logged and
// dropped, which keeps signup working in dev.
func (app *Application) initMail() {
	var m mailer.Mailer
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set, outgoing mail will be dropped")
		m = logMailer{logger: app.logger}
	} else {
		m = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
	}

	app.outbox = mailer.NewOutbox(m, app.logger, app.cfg.MailQueueSize)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authenticator = &service.Authenticator{
		Codec:      app.codec,
		Store:      app.db,
		Blocklist:  app.blocklist,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.accountService = &service.AccountService{
		Store:     app.db,
		Codec:     app.codec,
		Mail:      app.outbox,
		BaseURL:   app.cfg.BaseURL,
		VerifyTTL: app.cfg.VerifyTTL,
		ResetTTL:  app.cfg.ResetTTL,
	}

	app.guard = &service.Guard{
		Codec:     app.codec,
		Blocklist: app.blocklist,
		Store:     app.db,
	}
}

// initHTTP wires the router and HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.blocklist, app.logger)
	app.router.Guard = app.guard
	app.router.Authenticator = app.authenticator
	app.router.AccountService = app.accountService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}

// logMailer stands in for SMTP when no relay is configured.
type logMailer struct {
	logger *slog.Logger
}

func (m logMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.logger.Info("mail suppressed (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
