// Package conf loads happycall settings from config.yaml, HAPPYCALL_* environment
// variables and built-in defaults.
package conf

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// settingsMutex serializes Load calls, which mutate the global viper instance.
var settingsMutex sync.Mutex

// Database types
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// Settings is the complete application configuration.
type Settings struct {
	Debug bool `yaml:"debug" mapstructure:"debug"`

	WebServer    WebServerSettings    `yaml:"webserver" mapstructure:"webserver"`
	Database     DatabaseSettings     `yaml:"database" mapstructure:"database"`
	Recordings   RecordingsSettings   `yaml:"recordings" mapstructure:"recordings"`
	Workflow     WorkflowSettings     `yaml:"workflow" mapstructure:"workflow"`
	Seed         SeedSettings         `yaml:"seed" mapstructure:"seed"`
	Logging      logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Telemetry    TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
	Notification NotificationSettings `yaml:"notification" mapstructure:"notification"`
	Metrics      MetricsSettings      `yaml:"metrics" mapstructure:"metrics"`

	// ConfigFile is the file the settings were read from, empty for defaults only.
	ConfigFile string `yaml:"-" mapstructure:"-"`
}

// WebServerSettings controls the HTTP listener, sessions and login throttling.
type WebServerSettings struct {
	Listen             string        `yaml:"listen" mapstructure:"listen"`
	Port               string        `yaml:"port" mapstructure:"port"`
	SessionSecret      string        `yaml:"session_secret" mapstructure:"session_secret"`
	SecureCookies      bool          `yaml:"secure_cookies" mapstructure:"secure_cookies"`
	SessionMaxAge      time.Duration `yaml:"session_max_age" mapstructure:"session_max_age"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute" mapstructure:"login_rate_per_minute"`
	LockoutThreshold   int           `yaml:"lockout_threshold" mapstructure:"lockout_threshold"`
	LockoutDuration    time.Duration `yaml:"lockout_duration" mapstructure:"lockout_duration"`
}

// Address returns the host:port the server binds to.
func (w WebServerSettings) Address() string {
	return w.Listen + ":" + w.Port
}

// DatabaseSettings selects and configures the relational store.
type DatabaseSettings struct {
	Type               string         `yaml:"type" mapstructure:"type"`
	SlowQueryThreshold time.Duration  `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
	SQLite             SQLiteSettings `yaml:"sqlite" mapstructure:"sqlite"`
	MySQL              MySQLSettings  `yaml:"mysql" mapstructure:"mysql"`
}

type SQLiteSettings struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type MySQLSettings struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

// RecordingsSettings configures the blob directory for uploaded call recordings.
type RecordingsSettings struct {
	Path              string   `yaml:"path" mapstructure:"path"`
	MaxSize           int64    `yaml:"max_size" mapstructure:"max_size"` // bytes
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
}

type WorkflowSettings struct {
	RecordingRequired bool `yaml:"recording_required" mapstructure:"recording_required"`
}

// SeedSettings names the accounts and script created on first boot.
type SeedSettings struct {
	AdminUsername      string `yaml:"admin_username" mapstructure:"admin_username"`
	AdminPassword      string `yaml:"admin_password" mapstructure:"admin_password"`
	FreelancerUsername string `yaml:"freelancer_username" mapstructure:"freelancer_username"`
	FreelancerPassword string `yaml:"freelancer_password" mapstructure:"freelancer_password"`
	ScriptTitle        string `yaml:"script_title" mapstructure:"script_title"`
}

type TelemetrySettings struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// NotificationSettings configures the sinks told about new submissions.
type NotificationSettings struct {
	OnlyAbnormal bool            `yaml:"only_abnormal" mapstructure:"only_abnormal"`
	MQTT         MQTTSettings    `yaml:"mqtt" mapstructure:"mqtt"`
	Push         PushSettings    `yaml:"push" mapstructure:"push"`
	Webhook      WebhookSettings `yaml:"webhook" mapstructure:"webhook"`
}

type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Broker   string `yaml:"broker" mapstructure:"broker"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
	Retain   bool   `yaml:"retain" mapstructure:"retain"`
}

// PushSettings holds shoutrrr service URLs, e.g. telegram://token@telegram?chats=123.
type PushSettings struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	URLs    []string `yaml:"urls" mapstructure:"urls"`
}

type WebhookSettings struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type MetricsSettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Load reads config.yaml from the default search paths, writing the embedded
// default file first when none exists.
func Load() (*Settings, error) {
	return LoadFrom("")
}

// LoadFrom reads settings from configFile. An empty configFile searches the
// default config paths.
func LoadFrom(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.ConfigFile = viper.ConfigFileUsed()

	if settings.WebServer.SessionSecret == "" {
		settings.WebServer.SessionSecret = GenerateRandomSecret()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}
	return settings, nil
}

// initViper registers defaults and environment bindings, then reads the config file.
func initViper(configFile string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.New(err).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("config_file", configFile).
				Build()
		}
		return nil
	}

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, DefaultConfig(), 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	logger.Global().Module("conf").Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// DefaultConfig returns the embedded default config.yaml.
func DefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// the file is compiled in; a read failure means a broken build
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// GenerateRandomSecret returns a URL-safe base64 string with 256 bits of entropy.
func GenerateRandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Global().Module("conf").Error("failed to generate random secret", logger.Error(err))
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
