package conf

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/happycall-qa/happycall/internal/errors"
)

const redacted = "[REDACTED]"

// GetDefaultConfigPaths returns the directories searched for config.yaml:
// the working directory, the executable's directory and ~/.config/happycall.
// When one of them already holds a config.yaml only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-executable-path").
			Build()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	configPaths := []string{
		".",
		filepath.Dir(exePath),
		filepath.Join(homeDir, ".config", "happycall"),
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}
	return configPaths, nil
}

// Dump renders settings as YAML with passwords, secrets and DSNs redacted.
func Dump(settings *Settings) ([]byte, error) {
	clean := *settings
	clean.WebServer.SessionSecret = redactValue(clean.WebServer.SessionSecret)
	clean.Database.MySQL.Password = redactValue(clean.Database.MySQL.Password)
	clean.Seed.AdminPassword = redactValue(clean.Seed.AdminPassword)
	clean.Seed.FreelancerPassword = redactValue(clean.Seed.FreelancerPassword)
	clean.Telemetry.DSN = redactValue(clean.Telemetry.DSN)
	clean.Notification.MQTT.Password = redactValue(clean.Notification.MQTT.Password)

	urls := make([]string, len(settings.Notification.Push.URLs))
	for i, u := range settings.Notification.Push.URLs {
		urls[i] = redactURL(u)
	}
	clean.Notification.Push.URLs = urls
	clean.Notification.Webhook.URL = redactURL(clean.Notification.Webhook.URL)

	out, err := yaml.Marshal(&clean)
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "dump-config").
			Build()
	}
	return out, nil
}

func redactValue(v string) string {
	if v == "" {
		return ""
	}
	return redacted
}

// redactURL keeps the scheme so the service stays recognisable.
func redactURL(u string) string {
	if u == "" {
		return ""
	}
	scheme, _, ok := strings.Cut(u, "://")
	if !ok {
		return redacted
	}
	return scheme + "://" + redacted
}
