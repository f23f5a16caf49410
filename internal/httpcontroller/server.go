// Package httpcontroller serves the happy-call web UI: login, the admin
// pages and the freelancer pages.
package httpcontroller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/observability"
	"github.com/happycall-qa/happycall/internal/security"
	"github.com/happycall-qa/happycall/internal/telemetry"
)

const componentName = "httpcontroller"

const shutdownTimeout = 10 * time.Second

// RecordingServer streams stored recordings.
type RecordingServer interface {
	Serve(c echo.Context, key string) error
}

// Deps are the collaborators of a Server. Settings, Service and Sessions are
// required.
type Deps struct {
	Settings   *conf.Settings
	Service    *happycall.Service
	Sessions   *security.SessionManager
	Guard      *security.LoginGuard
	Recordings RecordingServer
	Metrics    *observability.Metrics // nil disables HTTP metrics and the metrics route
	Reporter   *telemetry.Reporter
	Logger     logger.Logger
}

// Server encapsulates the Echo server and the workflow it exposes.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings

	svc        *happycall.Service
	sessions   *security.SessionManager
	guard      *security.LoginGuard
	recordings RecordingServer
	metrics    *observability.Metrics
	reporter   *telemetry.Reporter
	log        logger.Logger
}

// New builds a Server with middleware, templates and routes in place.
func New(deps Deps) (*Server, error) {
	if deps.Settings == nil || deps.Service == nil || deps.Sessions == nil {
		return nil, errors.Newf("httpcontroller: settings, service and sessions are required").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}

	s := &Server{
		Echo:       echo.New(),
		Settings:   deps.Settings,
		svc:        deps.Service,
		sessions:   deps.Sessions,
		guard:      deps.Guard,
		recordings: deps.Recordings,
		metrics:    deps.Metrics,
		reporter:   deps.Reporter,
		log:        deps.Logger,
	}
	if s.log == nil {
		s.log = logger.Global().Module("http")
	}
	if s.guard == nil {
		s.guard = security.NewLoginGuard(security.DefaultLockoutThreshold, security.DefaultLockoutDuration)
	}

	if err := s.initializeServer(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeServer sets up the server, middleware, templates and routes.
func (s *Server) initializeServer() error {
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger.SetOutput(&echoLogAdapter{log: s.log})
	if s.Settings.Debug {
		s.Echo.Debug = true
		s.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		s.Echo.Logger.SetLevel(log.WARN)
	}

	if err := s.setupTemplateRenderer(); err != nil {
		return err
	}
	s.Echo.HTTPErrorHandler = s.handleHTTPError
	s.configureMiddleware()
	s.initRoutes()
	return nil
}

// Start listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Settings.WebServer.Address()
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", logger.String("address", addr))
		errCh <- s.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("address", addr).
			Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("operation", "shutdown").
			Build()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// echoLogAdapter adapts our Logger to implement io.Writer for Echo
type echoLogAdapter struct {
	log logger.Logger
}

func (a *echoLogAdapter) Write(p []byte) (int, error) {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		a.log.Info(string(p[:n-1]))
	} else if n > 0 {
		a.log.Info(string(p))
	}
	return len(p), nil
}
