package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// CycleEntry records the outcome of one poll cycle.
// Keep it compact and schema-stable.
type CycleEntry struct {
	At            time.Time `json:"at"`
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
	StatusMessage string    `json:"status_message,omitempty"`
	Notified      bool      `json:"notified"`
	Timestamp     int64     `json:"timestamp"` // lastTimestamp after the cycle
}

// NotificationEntry records one outbound message that was actually delivered.
type NotificationEntry struct {
	At     time.Time `json:"at"`
	ChatID int64     `json:"chat_id"`
	Text   string    `json:"text"`
}

// CycleStats aggregates cycle outcomes over a window.
type CycleStats struct {
	Total    int
	Failed   int
	Notified int
}
