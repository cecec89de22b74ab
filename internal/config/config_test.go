package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setAllSecrets(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIToken, "api-token")
	t.Setenv(EnvBotToken, "bot-token")
	t.Setenv(EnvChatID, "123456")
}

func TestLoadSecrets(t *testing.T) {
	setAllSecrets(t)

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.APIToken != "api-token" || s.BotToken != "bot-token" || s.ChatID != 123456 {
		t.Fatalf("unexpected secrets: %+v", s)
	}
}

func TestLoadSecretsReportsAllMissing(t *testing.T) {
	setAllSecrets(t)
	os.Unsetenv(EnvAPIToken)
	os.Unsetenv(EnvChatID)

	_, err := LoadSecrets()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
	if len(ce.Missing) != 2 {
		t.Fatalf("Missing = %v, want both absent variables", ce.Missing)
	}
	msg := ce.Error()
	if !strings.Contains(msg, EnvAPIToken) || !strings.Contains(msg, EnvChatID) {
		t.Fatalf("error text should name every missing variable: %q", msg)
	}
}

func TestLoadSecretsRejectsNonNumericChatID(t *testing.T) {
	setAllSecrets(t)
	t.Setenv(EnvChatID, "not-a-number")

	_, err := LoadSecrets()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	d, err := s.PollIntervalDuration()
	if err != nil || d != 10*time.Minute {
		t.Fatalf("default poll interval = %v (%v)", d, err)
	}
	if !s.Logging.ConsoleEnabled() {
		t.Fatal("console logging should default to enabled")
	}
}

func TestLoadSettingsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := `
poll_interval: 90s
logging:
  level: debug
storage:
  driver: file
  path: ./history
digest:
  enabled: true
  schedule: "0 8 * * *"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	d, _ := s.PollIntervalDuration()
	if d != 90*time.Second {
		t.Fatalf("poll interval = %v", d)
	}
	if s.Logging.Level != "debug" {
		t.Fatalf("level = %q", s.Logging.Level)
	}
	if s.Storage.Driver != "file" || s.Storage.Path != "./history" {
		t.Fatalf("storage = %+v", s.Storage)
	}
	if !s.Digest.Enabled || s.Digest.Schedule != "0 8 * * *" {
		t.Fatalf("digest = %+v", s.Digest)
	}
	// Unset fields keep their defaults.
	rt, _ := s.RequestTimeoutDuration()
	if rt != 30*time.Second {
		t.Fatalf("request timeout = %v", rt)
	}
}

func TestLoadSettingsRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("retry_time: 600\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("unknown field must be rejected")
	}
}

func TestLoadSettingsRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("poll_interval: sometimes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("invalid duration must be rejected")
	}
}
