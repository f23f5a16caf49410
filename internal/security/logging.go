package security

import (
	"github.com/happycall-qa/happycall/internal/logger"
)

// GetLogger returns a logger scoped to the security module.
func GetLogger() logger.Logger {
	return logger.Global().Module("security")
}
