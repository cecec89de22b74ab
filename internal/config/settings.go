package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Settings are the operational knobs. All fields have working defaults, so
// the settings file is optional; secrets never live here.
//
// All durations are Go duration strings (e.g. "30s", "10m").
type Settings struct {
	// Endpoint overrides the grading API URL (tests, staging).
	Endpoint string `json:"endpoint,omitempty"`

	// PollInterval is the delay after one cycle ends before the next starts.
	PollInterval string `json:"poll_interval,omitempty"`

	// RequestTimeout bounds one grading API round trip.
	RequestTimeout string `json:"request_timeout,omitempty"`

	Logging  LoggingSettings  `json:"logging,omitempty"`
	Notifier NotifierSettings `json:"notifier,omitempty"`
	Storage  StorageSettings  `json:"storage,omitempty"`
	Digest   DigestSettings   `json:"digest,omitempty"`
}

type LoggingSettings struct {
	Level   string `json:"level,omitempty"`
	Console *bool  `json:"console,omitempty"` // nil means true
	File    struct {
		Enabled bool   `json:"enabled,omitempty"`
		Path    string `json:"path,omitempty"`
	} `json:"file,omitempty"`
}

type NotifierSettings struct {
	RatePerSec  int    `json:"rate_per_sec,omitempty"`
	SendTimeout string `json:"send_timeout,omitempty"`
}

type StorageSettings struct {
	Driver      string `json:"driver,omitempty"` // "", "none", "file", "sqlite"
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type DigestSettings struct {
	Enabled  bool   `json:"enabled,omitempty"`
	Schedule string `json:"schedule,omitempty"` // cron spec, default "0 9 * * *"
}

// DefaultSettings returns the configuration used when no settings file exists.
func DefaultSettings() *Settings {
	return &Settings{
		PollInterval:   "10m",
		RequestTimeout: "30s",
		Logging:        LoggingSettings{Level: "info"},
		Notifier:       NotifierSettings{RatePerSec: 1},
		Digest:         DigestSettings{Schedule: "0 9 * * *"},
	}
}

// ConsoleEnabled resolves the tri-state console flag.
func (l LoggingSettings) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

// PollIntervalDuration parses PollInterval with a default fallback.
func (s *Settings) PollIntervalDuration() (time.Duration, error) {
	return ParseDurationOrDefault("poll_interval", s.PollInterval, 10*time.Minute)
}

// RequestTimeoutDuration parses RequestTimeout with a default fallback.
func (s *Settings) RequestTimeoutDuration() (time.Duration, error) {
	return ParseDurationOrDefault("request_timeout", s.RequestTimeout, 30*time.Second)
}

// Validate parses every duration/schedule field so a broken file is rejected
// before it is committed or published.
func (s *Settings) Validate() error {
	if _, err := s.PollIntervalDuration(); err != nil {
		return err
	}
	if _, err := s.RequestTimeoutDuration(); err != nil {
		return err
	}
	if _, err := ParseDurationField("notifier.send_timeout", s.Notifier.SendTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", s.Storage.BusyTimeout); err != nil {
		return err
	}
	return nil
}

// LoadSettings reads and strictly decodes the settings file. A missing file
// is not an error: defaults apply.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}
	return parseSettings(path, b)
}

func parseSettings(path string, b []byte) (*Settings, error) {
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated documents)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid settings: trailing data")
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
