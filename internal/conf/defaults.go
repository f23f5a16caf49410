package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/happycall-qa/happycall/internal/logger"
)

// DefaultMaxRecordingSize is the upload cap for a single recording.
const DefaultMaxRecordingSize = 16 * 1024 * 1024

// DefaultScriptTitle is the title of the seeded call script.
const DefaultScriptTitle = "기본 해피콜 스크립트"

// setDefaultConfig registers default values for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("webserver.listen", "0.0.0.0")
	viper.SetDefault("webserver.port", "5000")
	viper.SetDefault("webserver.session_secret", "")
	viper.SetDefault("webserver.secure_cookies", false)
	viper.SetDefault("webserver.session_max_age", 24*time.Hour)
	viper.SetDefault("webserver.login_rate_per_minute", 20)
	viper.SetDefault("webserver.lockout_threshold", 5)
	viper.SetDefault("webserver.lockout_duration", 15*time.Minute)

	viper.SetDefault("database.type", DatabaseSQLite)
	viper.SetDefault("database.slow_query_threshold", 200*time.Millisecond)
	viper.SetDefault("database.sqlite.path", "happycall.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "happycall")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "happycall")

	viper.SetDefault("recordings.path", "uploads")
	viper.SetDefault("recordings.max_size", DefaultMaxRecordingSize)
	viper.SetDefault("recordings.allowed_extensions", []string{"mp3", "wav", "m4a", "ogg"})

	viper.SetDefault("workflow.recording_required", true)

	viper.SetDefault("seed.admin_username", "1")
	viper.SetDefault("seed.admin_password", "1")
	viper.SetDefault("seed.freelancer_username", "2")
	viper.SetDefault("seed.freelancer_password", "2")
	viper.SetDefault("seed.script_title", DefaultScriptTitle)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
	viper.SetDefault("telemetry.environment", "production")

	viper.SetDefault("notification.only_abnormal", false)
	viper.SetDefault("notification.mqtt.enabled", false)
	viper.SetDefault("notification.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("notification.mqtt.client_id", "happycall")
	viper.SetDefault("notification.mqtt.topic", "happycall/submissions")
	viper.SetDefault("notification.mqtt.retain", false)
	viper.SetDefault("notification.push.enabled", false)
	viper.SetDefault("notification.push.urls", []string{})
	viper.SetDefault("notification.webhook.enabled", false)
	viper.SetDefault("notification.webhook.url", "")
	viper.SetDefault("notification.webhook.timeout", 10*time.Second)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}
