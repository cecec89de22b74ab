// Package digest sends a once-a-day summary of what the poll loop did:
// cycles run, failures, and the notifications that went out. It reads the
// persistent history, so it only runs when storage is enabled.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"hwbot/internal/notify"
	"hwbot/internal/storage"
	logx "hwbot/pkg/logx"
)

const defaultSchedule = "0 9 * * *"

type Config struct {
	// Schedule is a standard 5-field cron spec. Defaults to 09:00 daily.
	Schedule string

	// Window is the look-back period covered by one digest. Defaults to 24h.
	Window time.Duration
}

type Service struct {
	cfg      Config
	store    storage.Store
	notifier *notify.Service
	log      logx.Logger

	c *cron.Cron
}

func New(cfg Config, store storage.Store, notifier *notify.Service, log logx.Logger) *Service {
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, store: store, notifier: notifier, log: log}
}

// Start registers the cron entry and launches the scheduler.
func (s *Service) Start() error {
	if s.store == nil {
		return fmt.Errorf("digest requires storage")
	}
	c := cron.New()
	_, err := c.AddFunc(s.cfg.Schedule, s.run)
	if err != nil {
		return fmt.Errorf("digest schedule %q: %w", s.cfg.Schedule, err)
	}
	s.c = c
	c.Start()
	s.log.Info("digest scheduled", logx.String("spec", s.cfg.Schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Service) Stop() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
}

func (s *Service) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	since := time.Now().Add(-s.cfg.Window)
	stats, err := s.store.CycleStats(ctx, since)
	if err != nil {
		s.log.Error("digest stats query failed", logx.Err(err))
		return
	}
	recent, err := s.store.RecentNotifications(ctx, since, 10)
	if err != nil {
		s.log.Error("digest notifications query failed", logx.Err(err))
		return
	}

	text := Format(stats, recent, s.cfg.Window)
	s.notifier.Send(ctx, text)
}

// Format renders the digest message.
func Format(stats storage.CycleStats, recent []storage.NotificationEntry, window time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily digest (last %s)\n", window)
	fmt.Fprintf(&b, "Cycles: %d, failed: %d, notifications: %d\n", stats.Total, stats.Failed, stats.Notified)
	if len(recent) == 0 {
		b.WriteString("No notifications sent.")
		return b.String()
	}
	b.WriteString("Recent:\n")
	for _, n := range recent {
		fmt.Fprintf(&b, "- %s %s\n", n.At.Format("15:04"), n.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
