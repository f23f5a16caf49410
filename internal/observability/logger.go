package observability

import "github.com/happycall-qa/happycall/internal/logger"

// GetLogger returns a logger scoped to the telemetry module.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
