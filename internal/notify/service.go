package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hwbot/internal/eventbus"
	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	// Target is the single chat every notification goes to.
	Target transport.ChatTarget

	// RatePerSec caps outbound sends. Telegram allows ~30 msg/s to one
	// chat in bursts but sustained sends should stay far below that.
	RatePerSec int

	// SendTimeout bounds one delivery attempt. Defaults to 10s.
	SendTimeout time.Duration
}

type HistoryItem struct {
	At   time.Time
	Text string
}

// SentEvent is published on the bus for every delivery attempt.
type SentEvent struct {
	ChatID int64     `json:"chat_id"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
	Error  string    `json:"error,omitempty"`
}

// Service delivers notifications to the configured chat.
// It is safe for concurrent use.
type Service struct {
	cfg     Config
	sink    transport.Sink
	log     logx.Logger
	bus     eventbus.Bus
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sink transport.Sink, log logx.Logger, bus eventbus.Bus) *Service {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg,
		sink:    sink,
		log:     log,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Send delivers text to the configured chat. It never returns an error:
// failures are logged, published on the bus, and reported via the bool so
// callers can decide what to record.
func (s *Service) Send(ctx context.Context, text string) bool {
	if text == "" || s.sink == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.log.Debug("notification skipped", logx.Err(err))
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	_, err := s.sink.SendText(callCtx, s.cfg.Target, text, nil)
	cancel()

	now := time.Now()
	if err != nil {
		s.log.Error("failed to send notification", logx.Err(err), logx.Int64("chat_id", s.cfg.Target.ChatID))
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{
				Type: eventbus.TypeNotifyFailed,
				Time: now,
				Data: SentEvent{ChatID: s.cfg.Target.ChatID, Text: text, At: now, Error: err.Error()},
			})
		}
		return false
	}

	s.log.Debug("notification sent", logx.String("text", text))
	s.appendHistory(HistoryItem{At: now, Text: text})
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeNotifySent,
			Time: now,
			Data: SentEvent{ChatID: s.cfg.Target.ChatID, Text: text, At: now},
		})
	}
	return true
}

// Snapshot returns a copy of the recent delivery history.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(it HistoryItem) {
	s.hmu.Lock()
	s.history = append(s.history, it)
	if len(s.history) > 300 {
		s.history = s.history[len(s.history)-300:]
	}
	s.hmu.Unlock()
}
