// Package telemetry reports unexpected errors to Sentry. Only server-side
// faults are reported; user-facing validation and authorization outcomes
// never leave the process.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/privacy"
)

// Reporter sends scrubbed error events through its own Sentry hub.
// The zero value and a disabled Reporter are no-ops.
type Reporter struct {
	hub *sentry.Hub
	log logger.Logger
}

// Option customizes a Reporter.
type Option func(*sentry.ClientOptions)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(t sentry.Transport) Option {
	return func(o *sentry.ClientOptions) { o.Transport = t }
}

// GetLogger returns a logger scoped to the telemetry module.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}

// New builds a Reporter from settings. Telemetry disabled in settings yields
// a no-op Reporter.
func New(settings *conf.TelemetrySettings, version string, opts ...Option) (*Reporter, error) {
	log := GetLogger()
	if settings == nil || !settings.Enabled {
		return &Reporter{log: log}, nil
	}

	environment := settings.Environment
	if environment == "" {
		environment = "production"
	}

	options := sentry.ClientOptions{
		Dsn:              settings.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "", // Explicitly clear server name to prevent hostname leakage
		Release:          fmt.Sprintf("happycall@%s", version),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, errors.New(privacy.WrapError(err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	log.Info("error telemetry enabled", logger.String("environment", environment))
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope()), log: log}, nil
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// CaptureError reports err with a scrubbed message. The category of an
// EnhancedError becomes a tag so events group by failure kind.
func (r *Reporter) CaptureError(err error, component string) {
	if !r.Enabled() || err == nil || errors.IsReported(err) {
		return
	}

	scrubbed := privacy.ScrubMessage(err.Error())
	category := string(errors.CategoryOf(err))
	title := fmt.Sprintf("%s %s error", component, category)

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetTag("category", category)
		scope.SetFingerprint([]string{title})

		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = scrubbed
		event.Exception = []sentry.Exception{{
			Type:  title,
			Value: scrubbed,
		}}
		r.hub.CaptureEvent(event)
	})

	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		ee.MarkReported()
	}

	r.log.Debug("error event sent",
		logger.String("component", component),
		logger.String("category", category))
}

// ReportError receives server-side faults as they are built, so failures
// that never reach an HTTP response are still reported once.
func (r *Reporter) ReportError(ee *errors.EnhancedError) {
	r.CaptureError(ee, ee.Component)
}

// IsEnabled implements errors.TelemetryReporter.
func (r *Reporter) IsEnabled() bool {
	return r.Enabled()
}

// CaptureMessage reports a scrubbed message at level.
func (r *Reporter) CaptureMessage(message string, level sentry.Level, component string) {
	if !r.Enabled() {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetLevel(level)
		r.hub.CaptureMessage(privacy.ScrubMessage(message))
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

// applyPrivacyFilters applies privacy filters to a Sentry event
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}

	for k := range event.Extra {
		if k != "category" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
