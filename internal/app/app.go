// Package app wires the configured components together for the CLI commands.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/happycall-qa/happycall/internal/buildinfo"
	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/httpcontroller"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/notification"
	"github.com/happycall-qa/happycall/internal/observability"
	"github.com/happycall-qa/happycall/internal/recordings"
	"github.com/happycall-qa/happycall/internal/security"
	"github.com/happycall-qa/happycall/internal/telemetry"
)

const (
	componentName = "app"
	flushTimeout  = 2 * time.Second
	closeTimeout  = 5 * time.Second
)

// Context is shared by the root command and its subcommands. Settings is
// filled by the root command before any subcommand runs.
type Context struct {
	Build      *buildinfo.Context
	ConfigFile string
	Settings   *conf.Settings
}

// App holds every long-lived component of a running instance.
type App struct {
	Settings   *conf.Settings
	DB         datastore.Manager
	Repos      *repository.Set
	Metrics    *observability.Metrics
	Reporter   *telemetry.Reporter
	Notifier   *notification.Dispatcher
	Recordings *recordings.Store
	Service    *happycall.Service

	log logger.Logger
}

type openConfig struct {
	notifications bool
	hasher        *security.PasswordHasher
}

// Option adjusts which components Open builds.
type Option func(*openConfig)

// WithNotifications starts the notification dispatcher. Only the serve
// command needs it.
func WithNotifications() Option {
	return func(c *openConfig) { c.notifications = true }
}

// WithPasswordCost overrides the bcrypt cost, mainly for tests.
func WithPasswordCost(cost int) Option {
	return func(c *openConfig) { c.hasher = security.NewPasswordHasher(cost) }
}

// Open connects the database, migrates the schema and builds the workflow
// service with its collaborators. Close must be called on success.
func Open(ctx context.Context, rc *Context, opts ...Option) (a *App, err error) {
	if rc == nil || rc.Settings == nil {
		return nil, errors.Newf("app: settings are not loaded").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	cfg := openConfig{hasher: security.NewPasswordHasher(0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	settings := rc.Settings
	a = &App{Settings: settings, log: logger.Global().Module(componentName)}
	defer func() {
		if err != nil {
			a.Close(ctx)
			a = nil
		}
	}()

	if a.Reporter, err = telemetry.New(&settings.Telemetry, rc.Build.Version()); err != nil {
		return a, err
	}
	if a.Reporter.Enabled() {
		errors.SetTelemetryReporter(a.Reporter)
	}
	if a.Metrics, err = observability.NewMetrics(); err != nil {
		return a, err
	}

	if a.DB, err = datastore.Open(&settings.Database, logger.Global().Module("datastore")); err != nil {
		return a, err
	}
	if err = a.DB.Initialize(ctx); err != nil {
		return a, err
	}
	a.Repos = repository.NewSet(a.DB.DB())

	a.Recordings, err = recordings.New(&settings.Recordings, logger.Global().Module("recordings"),
		recordings.WithSizeObserver(a.Metrics.HappyCall.RecordRecordingSize))
	if err != nil {
		return a, err
	}

	deps := happycall.Deps{
		Repos:      a.Repos,
		Hasher:     cfg.hasher,
		Recordings: a.Recordings,
		Metrics:    a.Metrics.HappyCall,
		Logger:     logger.Global().Module("happycall"),
	}
	if cfg.notifications {
		a.Notifier, err = notification.FromSettings(ctx, &settings.Notification, a.Metrics.HappyCall, notification.GetLogger())
		if err != nil {
			return a, err
		}
		deps.Notifier = a.Notifier
	}

	a.Service, err = happycall.NewService(deps, happycall.Options{RecordingRequired: settings.Workflow.RecordingRequired})
	if err != nil {
		return a, err
	}

	a.log.Info("components ready",
		logger.String("database", a.DB.Path()),
		logger.Bool("recording_required", settings.Workflow.RecordingRequired),
		logger.Bool("notifications", a.Notifier != nil),
		logger.Bool("telemetry", a.Reporter.Enabled()))
	return a, nil
}

// Seed creates the default accounts and script when they are missing.
func (a *App) Seed(ctx context.Context) (happycall.SeedResult, error) {
	return a.Service.Seed(ctx, &a.Settings.Seed)
}

// Serve runs the web server until ctx is cancelled or the server fails.
func (a *App) Serve(ctx context.Context) error {
	ws := a.Settings.WebServer
	srv, err := httpcontroller.New(httpcontroller.Deps{
		Settings:   a.Settings,
		Service:    a.Service,
		Sessions:   security.NewSessionManager(ws.SessionSecret, ws.SecureCookies, ws.SessionMaxAge),
		Guard:      security.NewLoginGuard(ws.LockoutThreshold, ws.LockoutDuration),
		Recordings: a.Recordings,
		Metrics:    a.Metrics,
		Reporter:   a.Reporter,
		Logger:     logger.Global().Module("httpcontroller"),
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	serverDone := make(chan struct{})
	g.Go(func() error {
		defer close(serverDone)
		return srv.Start(gctx)
	})
	if a.Notifier != nil {
		// drain queued events once in-flight requests have finished
		g.Go(func() error {
			<-serverDone
			closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			return a.Notifier.Close(closeCtx)
		})
	}
	return g.Wait()
}

// Close releases every component that was opened. It is safe on a
// partially opened App.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Notifier != nil {
		closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
		if err := a.Notifier.Close(closeCtx); err != nil {
			a.log.Warn("notification dispatcher did not drain", logger.Error(err))
		}
		cancel()
	}
	if a.Recordings != nil {
		if err := a.Recordings.Close(); err != nil {
			a.log.Warn("failed to close recording store", logger.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.log.Error("failed to close database", logger.Error(err))
		}
	}
	if a.Reporter.Enabled() {
		errors.SetTelemetryReporter(nil)
		a.Reporter.Flush(flushTimeout)
	}
}
