package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "hwbot/pkg/logx"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "history")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now()

	entries := []CycleEntry{
		{At: now.Add(-2 * time.Hour), OK: true, Notified: true, StatusMessage: "msg", Timestamp: 10},
		{At: now.Add(-1 * time.Hour), OK: false, Error: "Polling failure: boom", Timestamp: 10},
		{At: now.Add(-30 * time.Hour), OK: true, Timestamp: 5}, // outside the window
	}
	for _, e := range entries {
		if err := st.AppendCycle(ctx, e); err != nil {
			t.Fatalf("AppendCycle: %v", err)
		}
	}
	if err := st.AppendNotification(ctx, NotificationEntry{At: now.Add(-time.Hour), ChatID: 1, Text: "a"}); err != nil {
		t.Fatalf("AppendNotification: %v", err)
	}
	if err := st.AppendNotification(ctx, NotificationEntry{At: now.Add(-time.Minute), ChatID: 1, Text: "b"}); err != nil {
		t.Fatalf("AppendNotification: %v", err)
	}

	stats, err := st.CycleStats(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CycleStats: %v", err)
	}
	if stats.Total != 2 || stats.Failed != 1 || stats.Notified != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	recent, err := st.RecentNotifications(ctx, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("RecentNotifications: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %+v", recent)
	}
	// Newest first.
	if recent[0].Text != "b" || recent[1].Text != "a" {
		t.Fatalf("order = %q, %q", recent[0].Text, recent[1].Text)
	}
}

func TestFileStoreLimit(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "history")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		e := NotificationEntry{At: now.Add(-time.Duration(i) * time.Minute), ChatID: 1, Text: "x"}
		if err := st.AppendNotification(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := st.RecentNotifications(ctx, now.Add(-time.Hour), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("limit not applied, got %d", len(recent))
	}
}

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("driver %q: store=%v err=%v", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver must fail")
	}
}
