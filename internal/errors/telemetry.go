// Package errors - telemetry integration (optional)
package errors

import (
	"sync"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// reportable lists the categories that indicate a server-side fault.
// Expected user outcomes (validation, authorization, conflict, not-found)
// are not telemetry.
var reportable = map[ErrorCategory]bool{
	CategoryDatabase:      true,
	CategoryFileIO:        true,
	CategoryConfiguration: true,
	CategorySystem:        true,
	CategoryNotification:  true,
	CategoryGeneric:       true,
}

// Reportable reports whether errors of category belong in telemetry.
func Reportable(category ErrorCategory) bool {
	return reportable[category]
}

// IsReported reports whether err or any error it wraps was already sent to
// telemetry.
func IsReported(err error) bool {
	for err != nil {
		if ee, ok := err.(*EnhancedError); ok && ee.IsReported() {
			return true
		}
		err = Unwrap(err)
	}
	return false
}

var (
	telemetryMu             sync.RWMutex
	globalTelemetryReporter TelemetryReporter
)

// SetTelemetryReporter sets the global telemetry reporter
func SetTelemetryReporter(reporter TelemetryReporter) {
	telemetryMu.Lock()
	defer telemetryMu.Unlock()
	globalTelemetryReporter = reporter
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	telemetryMu.RLock()
	defer telemetryMu.RUnlock()
	return globalTelemetryReporter
}

func reportToTelemetry(ee *EnhancedError) {
	if !Reportable(ee.Category) || IsReported(ee.Err) {
		return
	}
	if reporter := GetTelemetryReporter(); reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}
