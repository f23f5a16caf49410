package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/happycall"
)

// HappyCallMetrics counts workflow outcomes. It satisfies happycall.Metrics
// and the notification dispatcher's result recorder.
type HappyCallMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	denialsTotal       *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	recordingBytes     prometheus.Histogram
}

var _ happycall.Metrics = (*HappyCallMetrics)(nil)

// NewHappyCallMetrics creates and registers the workflow metrics.
func NewHappyCallMetrics(registry prometheus.Registerer) (*HappyCallMetrics, error) {
	m := &HappyCallMetrics{
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happycall_submissions_total",
				Help: "Total number of checklist submissions by final status",
			},
			[]string{"final_status"},
		),
		denialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happycall_authorization_denials_total",
				Help: "Total number of denied operations by reason",
			},
			[]string{"reason"},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happycall_notifications_total",
				Help: "Total number of notification deliveries by sink and result",
			},
			[]string{"sink", "result"},
		),
		recordingBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "happycall_recording_size_bytes",
				Help:    "Size of uploaded call recordings",
				Buckets: prometheus.ExponentialBuckets(64*1024, 2, 9), // 64KiB to 16MiB
			},
		),
	}

	for _, c := range []prometheus.Collector{m.submissionsTotal, m.denialsTotal, m.notificationsTotal, m.recordingBytes} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-create the label pairs so dashboards see zeroes before the first event.
	m.submissionsTotal.WithLabelValues(string(entities.FinalStatusNormal))
	m.submissionsTotal.WithLabelValues(string(entities.FinalStatusAbnormal))
	return m, nil
}

func (m *HappyCallMetrics) RecordSubmission(finalStatus entities.FinalStatus) {
	m.submissionsTotal.WithLabelValues(string(finalStatus)).Inc()
}

func (m *HappyCallMetrics) RecordDenial(reason happycall.DenyReason) {
	m.denialsTotal.WithLabelValues(string(reason)).Inc()
}

func (m *HappyCallMetrics) RecordNotification(sink, result string) {
	m.notificationsTotal.WithLabelValues(sink, result).Inc()
}

// RecordRecordingSize observes the stored size of an uploaded recording.
func (m *HappyCallMetrics) RecordRecordingSize(bytes int64) {
	m.recordingBytes.Observe(float64(bytes))
}
