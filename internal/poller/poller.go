// Package poller drives the fetch-validate-translate-notify-advance loop.
//
// One Poller owns one PollState. Everything inside a tick runs synchronously
// on the loop goroutine, so the state needs no locking. Errors from any stage
// are caught at the cycle boundary: they are reported once per distinct error
// text and never crash the loop.
package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"hwbot/internal/eventbus"
	"hwbot/internal/grader"
	logx "hwbot/pkg/logx"
)

// Fetcher requests homework statuses newer than fromDate (epoch seconds).
type Fetcher interface {
	HomeworkStatuses(ctx context.Context, fromDate int64) (any, error)
}

// Notifier delivers one message; it must swallow delivery failures and
// report the outcome as a bool.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// State is the loop's memory between ticks. It lives for the process
// lifetime and is intentionally not persisted.
type State struct {
	LastTimestamp     int64
	LastStatusMessage string
	LastErrorMessage  string
}

type Config struct {
	// Interval is the delay between the end of one cycle and the start of
	// the next (delay-after-end, not a fixed rate: a slow fetch stretches
	// the effective period).
	Interval time.Duration

	// StartFrom seeds State.LastTimestamp. Zero means "now".
	StartFrom int64
}

const DefaultInterval = 10 * time.Minute

type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	bus      eventbus.Bus
	log      logx.Logger

	interval atomic.Int64 // nanoseconds

	state State
}

func New(cfg Config, fetcher Fetcher, notifier Notifier, bus eventbus.Bus, log logx.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	start := cfg.StartFrom
	if start == 0 {
		start = time.Now().Unix()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		fetcher:  fetcher,
		notifier: notifier,
		bus:      bus,
		log:      log,
		state:    State{LastTimestamp: start},
	}
	p.interval.Store(int64(cfg.Interval))
	return p
}

// SetInterval changes the inter-cycle delay; it takes effect after the
// currently pending delay expires.
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval.Store(int64(d))
	}
}

// State returns a copy of the loop state. Only safe to rely on between
// cycles (tests) or for diagnostics.
func (p *Poller) State() State { return p.state }

// CycleEvent is published on the bus after every cycle.
type CycleEvent struct {
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
	StatusMessage string    `json:"status_message,omitempty"`
	Notified      bool      `json:"notified"`
	Timestamp     int64     `json:"timestamp"`
	At            time.Time `json:"at"`
}

// Run executes cycles until ctx is cancelled. The delay is measured from
// cycle end, preserving the source behavior where slow fetches stretch the
// effective period.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poll loop started",
		logx.Duration("interval", time.Duration(p.interval.Load())),
		logx.Int64("from", p.state.LastTimestamp),
	)
	for {
		p.RunCycle(ctx)

		delay := time.Duration(p.interval.Load())
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			p.log.Info("poll loop stopped")
			return
		case <-t.C:
		}
	}
}

// RunCycle performs exactly one fetch-validate-translate-notify-advance pass.
// It never returns an error: recoverable failures are reported through the
// notifier (deduplicated against the last reported error) and logged.
func (p *Poller) RunCycle(ctx context.Context) {
	notified, err := p.cycle(ctx)
	now := time.Now()

	if err == nil {
		if p.bus != nil {
			p.bus.Publish(eventbus.Event{Type: eventbus.TypeCycleSuccess, Time: now, Data: CycleEvent{
				OK:            true,
				StatusMessage: p.state.LastStatusMessage,
				Notified:      notified,
				Timestamp:     p.state.LastTimestamp,
				At:            now,
			}})
		}
		return
	}

	// Recoverable failure: report once per distinct error text, keep looping.
	errMsg := fmt.Sprintf("Polling failure: %v", err)
	p.log.Error("poll cycle failed", logx.Err(err))
	if errMsg != p.state.LastErrorMessage {
		// Delivery failures are swallowed and the text is still recorded
		// so an unresolved error is never reported twice.
		p.notifier.Send(ctx, errMsg)
		p.state.LastErrorMessage = errMsg
	}

	if p.bus != nil {
		p.bus.Publish(eventbus.Event{Type: eventbus.TypeCycleFailure, Time: now, Data: CycleEvent{
			Error:     errMsg,
			Timestamp: p.state.LastTimestamp,
			At:        now,
		}})
	}
}

// cycle runs the four linear stages. On any error the state is left so that
// LastTimestamp is unchanged.
func (p *Poller) cycle(ctx context.Context) (notified bool, err error) {
	raw, err := p.fetcher.HomeworkStatuses(ctx, p.state.LastTimestamp)
	if err != nil {
		return false, err
	}

	resp, err := grader.Validate(raw)
	if err != nil {
		return false, err
	}

	if len(resp.Homeworks) > 0 {
		// Only the first record is translated per cycle; later records are
		// picked up on the next poll. This bounds notification volume to one
		// message per tick.
		msg, terr := grader.Translate(resp.Homeworks[0])
		if terr != nil {
			return false, terr
		}
		if msg != p.state.LastStatusMessage {
			p.notifier.Send(ctx, msg)
			p.state.LastStatusMessage = msg
			notified = true
		} else {
			p.log.Debug("homework status unchanged")
		}
	} else {
		p.log.Debug("no new statuses in response")
	}

	p.state.LastTimestamp = resp.CurrentDate
	return notified, nil
}
