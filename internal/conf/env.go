package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "HAPPYCALL_DEBUG", validateEnvBool},

		// Web server
		{"webserver.port", "HAPPYCALL_PORT", validateEnvPort},
		{"webserver.session_secret", "HAPPYCALL_SESSION_SECRET", validateEnvSecret},
		{"webserver.secure_cookies", "HAPPYCALL_SECURE_COOKIES", validateEnvBool},

		// Database
		{"database.type", "HAPPYCALL_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "HAPPYCALL_SQLITE_PATH", validateEnvPath},
		{"database.mysql.host", "HAPPYCALL_MYSQL_HOST", nil},
		{"database.mysql.port", "HAPPYCALL_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "HAPPYCALL_MYSQL_USERNAME", nil},
		{"database.mysql.password", "HAPPYCALL_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "HAPPYCALL_MYSQL_DATABASE", nil},

		// Recordings and workflow
		{"recordings.path", "HAPPYCALL_RECORDINGS_PATH", validateEnvPath},
		{"workflow.recording_required", "HAPPYCALL_RECORDING_REQUIRED", validateEnvBool},

		// Seed accounts
		{"seed.admin_username", "HAPPYCALL_ADMIN_USERNAME", nil},
		{"seed.admin_password", "HAPPYCALL_ADMIN_PASSWORD", nil},
		{"seed.freelancer_username", "HAPPYCALL_FREELANCER_USERNAME", nil},
		{"seed.freelancer_password", "HAPPYCALL_FREELANCER_PASSWORD", nil},

		{"logging.default_level", "HAPPYCALL_LOG_LEVEL", validateEnvLogLevel},
		{"telemetry.dsn", "HAPPYCALL_SENTRY_DSN", nil},
	}
}

// bindEnvVars binds every variable and validates the ones that are set.
// All problems are reported together.
func bindEnvVars() error {
	var problems []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			problems = append(problems, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		value, ok := os.LookupEnv(binding.EnvVar)
		if !ok || value == "" {
			continue
		}
		if err := binding.Validate(value); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s: %v", binding.EnvVar, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value %q", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", value)
	}
	return nil
}

func validateEnvSecret(value string) error {
	if len(value) < 16 {
		return fmt.Errorf("session secret must be at least 16 characters")
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("database type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, value)
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", value)
}

// validateEnvPath rejects paths that climb out of their base with "..".
func validateEnvPath(value string) error {
	for part := range strings.SplitSeq(filepath.ToSlash(value), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal detected in %q", value)
		}
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars()
}
