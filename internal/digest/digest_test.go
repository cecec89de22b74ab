package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hwbot/internal/storage"
	logx "hwbot/pkg/logx"
)

func logxNop() logx.Logger { return logx.Nop() }

func TestFormatWithNotifications(t *testing.T) {
	at := time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC)
	text := Format(
		storage.CycleStats{Total: 144, Failed: 2, Notified: 1},
		[]storage.NotificationEntry{{At: at, ChatID: 1, Text: "status changed"}},
		24*time.Hour,
	)

	assert.Contains(t, text, "Daily digest (last 24h0m0s)")
	assert.Contains(t, text, "Cycles: 144, failed: 2, notifications: 1")
	assert.Contains(t, text, "- 09:15 status changed")
	assert.False(t, strings.HasSuffix(text, "\n"))
}

func TestFormatEmpty(t *testing.T) {
	text := Format(storage.CycleStats{}, nil, 24*time.Hour)
	assert.Contains(t, text, "No notifications sent.")
}

func TestStartRequiresStore(t *testing.T) {
	s := New(Config{}, nil, nil, logxNop())
	assert.Error(t, s.Start())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.Open(storage.Config{Driver: "file", Path: dir + "/h"}, logxNop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	s := New(Config{Schedule: "every now and then"}, st, nil, logxNop())
	assert.Error(t, s.Start())
}
