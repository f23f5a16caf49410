package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfig writes content to a temp config.yaml and resets viper state.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_EmbeddedDefaults(t *testing.T) {
	path := writeConfig(t, string(DefaultConfig()))

	settings, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, path, settings.ConfigFile)
	assert.Equal(t, "5000", settings.WebServer.Port)
	assert.Equal(t, 24*time.Hour, settings.WebServer.SessionMaxAge)
	assert.Equal(t, 15*time.Minute, settings.WebServer.LockoutDuration)
	assert.Equal(t, DatabaseSQLite, settings.Database.Type)
	assert.Equal(t, int64(DefaultMaxRecordingSize), settings.Recordings.MaxSize)
	assert.Equal(t, []string{"m4a", "mp3", "ogg", "wav"}, settings.Recordings.AllowedExtensions)
	assert.True(t, settings.Workflow.RecordingRequired)
	assert.Equal(t, "1", settings.Seed.AdminUsername)
	assert.Equal(t, "2", settings.Seed.FreelancerUsername)
	assert.Equal(t, DefaultScriptTitle, settings.Seed.ScriptTitle)
	assert.True(t, settings.Metrics.Enabled)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.NotEmpty(t, settings.WebServer.SessionSecret, "empty secret is replaced")
}

func TestLoadFrom_MinimalFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "workflow:\n  recording_required: false\n")

	settings, err := LoadFrom(path)
	require.NoError(t, err)

	assert.False(t, settings.Workflow.RecordingRequired)
	assert.Equal(t, "happycall.db", settings.Database.SQLite.Path)
	assert.Equal(t, "/metrics", settings.Metrics.Path)
	assert.Equal(t, 10*time.Second, settings.Notification.Webhook.Timeout)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "webserver:\n  port: \"5000\"\n")
	t.Setenv("HAPPYCALL_PORT", "8081")
	t.Setenv("HAPPYCALL_RECORDING_REQUIRED", "false")
	t.Setenv("HAPPYCALL_ADMIN_USERNAME", "boss")

	settings, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", settings.WebServer.Port)
	assert.False(t, settings.Workflow.RecordingRequired)
	assert.Equal(t, "boss", settings.Seed.AdminUsername)
}

func TestLoadFrom_InvalidEnvironmentReportedTogether(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("HAPPYCALL_PORT", "99999")
	t.Setenv("HAPPYCALL_DATABASE_TYPE", "oracle")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HAPPYCALL_PORT")
	assert.Contains(t, err.Error(), "HAPPYCALL_DATABASE_TYPE")
}

func TestLoadFrom_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			WebServer: WebServerSettings{
				Port: "5000", SessionMaxAge: time.Hour, LoginRatePerMinute: 10,
				LockoutThreshold: 5, LockoutDuration: time.Minute,
			},
			Database:   DatabaseSettings{Type: "SQLite", SQLite: SQLiteSettings{Path: "x.db"}},
			Recordings: RecordingsSettings{Path: "uploads", MaxSize: 1, AllowedExtensions: []string{".WAV", "mp3", "wav"}},
			Seed:       SeedSettings{AdminUsername: "1", AdminPassword: "1", FreelancerUsername: "2", FreelancerPassword: "2"},
			Metrics:    MetricsSettings{Enabled: true, Path: "/metrics"},
		}
	}

	t.Run("valid settings are normalised", func(t *testing.T) {
		s := valid()
		require.NoError(t, ValidateSettings(s))
		assert.Equal(t, DatabaseSQLite, s.Database.Type)
		assert.Equal(t, []string{"mp3", "wav"}, s.Recordings.AllowedExtensions)
		assert.Equal(t, DefaultScriptTitle, s.Seed.ScriptTitle)
	})

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"bad port", func(s *Settings) { s.WebServer.Port = "http" }, "webserver.port"},
		{"unknown database", func(s *Settings) { s.Database.Type = "oracle" }, "database.type"},
		{"mysql without host", func(s *Settings) { s.Database.Type = DatabaseMySQL }, "database.mysql"},
		{"no extensions", func(s *Settings) { s.Recordings.AllowedExtensions = nil }, "allowed_extensions"},
		{"same seed usernames", func(s *Settings) { s.Seed.FreelancerUsername = "1" }, "must differ"},
		{"telemetry without dsn", func(s *Settings) { s.Telemetry.Enabled = true }, "telemetry.dsn"},
		{"push without urls", func(s *Settings) { s.Notification.Push.Enabled = true }, "push.urls"},
		{"webhook bad url", func(s *Settings) {
			s.Notification.Webhook = WebhookSettings{Enabled: true, URL: "ftp://x", Timeout: time.Second}
		}, "webhook.url"},
		{"relative metrics path", func(s *Settings) { s.Metrics.Path = "metrics" }, "metrics.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := ValidateSettings(s)
			require.Error(t, err)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Error(), tt.wantErr)
		})
	}

	t.Run("all problems reported", func(t *testing.T) {
		s := valid()
		s.WebServer.Port = "0"
		s.Recordings.Path = ""
		var ve ValidationError
		require.ErrorAs(t, ValidateSettings(s), &ve)
		assert.Len(t, ve.Errors, 2)
	})
}

func TestDump_RedactsSecrets(t *testing.T) {
	s := &Settings{}
	s.WebServer.SessionSecret = "super-secret-value"
	s.Seed.AdminPassword = "1"
	s.Database.MySQL.Password = "dbpass"
	s.Notification.Push.URLs = []string{"telegram://token@telegram?chats=1"}
	s.Notification.Webhook.URL = "https://hooks.example.com/abc"

	out, err := Dump(s)
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "super-secret-value")
	assert.NotContains(t, text, "dbpass")
	assert.NotContains(t, text, "token@telegram")
	assert.Contains(t, text, "telegram://[REDACTED]")
	assert.Contains(t, text, "https://[REDACTED]")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Contains(t, back, "webserver")

	assert.Equal(t, "super-secret-value", s.WebServer.SessionSecret, "input left untouched")
	assert.Equal(t, "telegram://token@telegram?chats=1", s.Notification.Push.URLs[0])
}

func TestValidateEnvHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"bool true", validateEnvBool, " true ", false},
		{"bool yes", validateEnvBool, "yes", true},
		{"port ok", validateEnvPort, "8080", false},
		{"port zero", validateEnvPort, "0", true},
		{"short secret", validateEnvSecret, "abc", true},
		{"long secret", validateEnvSecret, "0123456789abcdef", false},
		{"db mysql", validateEnvDatabaseType, "MySQL", false},
		{"db bogus", validateEnvDatabaseType, "mongo", true},
		{"level trace", validateEnvLogLevel, "trace", false},
		{"level loud", validateEnvLogLevel, "loud", true},
		{"path ok", validateEnvPath, "/var/lib/happycall/uploads", false},
		{"path traversal", validateEnvPath, "uploads/../../etc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
