// Package observability wires the Prometheus registry and the /metrics handler.
// Sentry error reporting lives in the telemetry package.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	HTTP      *metrics.HTTPMetrics
	HappyCall *metrics.HappyCallMetrics
}

// NewMetrics creates a new instance of Metrics on a private registry that also
// carries the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, wrapRegisterError(err, "http")
	}

	happyCallMetrics, err := metrics.NewHappyCallMetrics(registry)
	if err != nil {
		return nil, wrapRegisterError(err, "happycall")
	}

	return &Metrics{
		registry:  registry,
		HTTP:      httpMetrics,
		HappyCall: happyCallMetrics,
	}, nil
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promErrorLog{log: GetLogger()},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func wrapRegisterError(err error, set string) error {
	return errors.New(err).
		Component("observability").
		Category(errors.CategorySystem).
		Context("metric_set", set).
		Build()
}

// promErrorLog adapts the module logger to promhttp.Logger.
type promErrorLog struct {
	log logger.Logger
}

func (p promErrorLog) Println(v ...any) {
	p.log.Error("metrics handler error", logger.Any("details", v))
}
