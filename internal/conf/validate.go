package conf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %v", ve.Errors)
}

// ValidateSettings checks the whole Settings struct and reports every problem at once.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		validateWebServerSettings,
		validateDatabaseSettings,
		validateRecordingsSettings,
		validateSeedSettings,
		validateTelemetrySettings,
		validateNotificationSettings,
		validateMetricsSettings,
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(s *Settings) []string {
	var errs []string
	ws := &s.WebServer

	if port, err := strconv.Atoi(ws.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("webserver.port must be between 1 and 65535, got %q", ws.Port))
	}
	if ws.SessionMaxAge <= 0 {
		errs = append(errs, "webserver.session_max_age must be positive")
	}
	if ws.LoginRatePerMinute < 1 {
		errs = append(errs, "webserver.login_rate_per_minute must be at least 1")
	}
	if ws.LockoutThreshold < 1 {
		errs = append(errs, "webserver.lockout_threshold must be at least 1")
	}
	if ws.LockoutDuration <= 0 {
		errs = append(errs, "webserver.lockout_duration must be positive")
	}
	return errs
}

func validateDatabaseSettings(s *Settings) []string {
	var errs []string
	db := &s.Database
	db.Type = strings.ToLower(strings.TrimSpace(db.Type))

	switch db.Type {
	case DatabaseSQLite:
		if db.SQLite.Path == "" {
			errs = append(errs, "database.sqlite.path is required")
		}
	case DatabaseMySQL:
		if db.MySQL.Host == "" || db.MySQL.Username == "" || db.MySQL.Database == "" {
			errs = append(errs, "database.mysql requires host, username and database")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, db.Type))
	}
	return errs
}

func validateRecordingsSettings(s *Settings) []string {
	var errs []string
	rec := &s.Recordings

	if rec.Path == "" {
		errs = append(errs, "recordings.path is required")
	}
	if rec.MaxSize <= 0 {
		errs = append(errs, "recordings.max_size must be positive")
	}
	if len(rec.AllowedExtensions) == 0 {
		errs = append(errs, "recordings.allowed_extensions must list at least one extension")
	}
	for i, ext := range rec.AllowedExtensions {
		rec.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
	rec.AllowedExtensions = slices.Compact(slices.Sorted(slices.Values(rec.AllowedExtensions)))
	return errs
}

func validateSeedSettings(s *Settings) []string {
	var errs []string
	seed := &s.Seed

	if seed.AdminUsername == "" || seed.AdminPassword == "" {
		errs = append(errs, "seed.admin_username and seed.admin_password are required")
	}
	if seed.FreelancerUsername == "" || seed.FreelancerPassword == "" {
		errs = append(errs, "seed.freelancer_username and seed.freelancer_password are required")
	}
	if seed.AdminUsername != "" && seed.AdminUsername == seed.FreelancerUsername {
		errs = append(errs, "seed admin and freelancer usernames must differ")
	}
	if seed.ScriptTitle == "" {
		seed.ScriptTitle = DefaultScriptTitle
	}
	return errs
}

func validateTelemetrySettings(s *Settings) []string {
	if s.Telemetry.Enabled && s.Telemetry.DSN == "" {
		return []string{"telemetry.dsn is required when telemetry is enabled"}
	}
	return nil
}

func validateNotificationSettings(s *Settings) []string {
	var errs []string
	n := &s.Notification

	if n.MQTT.Enabled {
		if n.MQTT.Broker == "" {
			errs = append(errs, "notification.mqtt.broker is required when mqtt is enabled")
		}
		if n.MQTT.Topic == "" {
			errs = append(errs, "notification.mqtt.topic is required when mqtt is enabled")
		}
	}
	if n.Push.Enabled && len(n.Push.URLs) == 0 {
		errs = append(errs, "notification.push.urls must not be empty when push is enabled")
	}
	if n.Webhook.Enabled {
		if !strings.HasPrefix(n.Webhook.URL, "http://") && !strings.HasPrefix(n.Webhook.URL, "https://") {
			errs = append(errs, fmt.Sprintf("notification.webhook.url must be an http(s) URL, got %q", n.Webhook.URL))
		}
		if n.Webhook.Timeout <= 0 {
			errs = append(errs, "notification.webhook.timeout must be positive")
		}
	}
	return errs
}

func validateMetricsSettings(s *Settings) []string {
	if s.Metrics.Enabled && !strings.HasPrefix(s.Metrics.Path, "/") {
		return []string{fmt.Sprintf("metrics.path must start with '/', got %q", s.Metrics.Path)}
	}
	return nil
}
