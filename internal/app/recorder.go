package app

import (
	"context"
	"time"

	"hwbot/internal/eventbus"
	"hwbot/internal/notify"
	"hwbot/internal/poller"
	"hwbot/internal/storage"
	logx "hwbot/pkg/logx"
)

// recordLoop persists bus events into the history store. Writes are
// best-effort: a slow or broken store must never stall the poll loop, which
// is why this runs on its own goroutine behind the non-blocking bus.
func (a *App) recordLoop(ctx context.Context) error {
	ch, unsub := a.bus.Subscribe(64)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			a.record(ctx, ev)
		}
	}
}

func (a *App) record(ctx context.Context, ev eventbus.Event) {
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	switch ev.Type {
	case eventbus.TypeCycleSuccess, eventbus.TypeCycleFailure:
		c, ok := ev.Data.(poller.CycleEvent)
		if !ok {
			return
		}
		err := a.store.AppendCycle(wctx, storage.CycleEntry{
			At:            c.At,
			OK:            c.OK,
			Error:         c.Error,
			StatusMessage: c.StatusMessage,
			Notified:      c.Notified,
			Timestamp:     c.Timestamp,
		})
		if err != nil {
			a.log.Warn("cycle history write failed", logx.Err(err))
		}
	case eventbus.TypeNotifySent:
		n, ok := ev.Data.(notify.SentEvent)
		if !ok {
			return
		}
		err := a.store.AppendNotification(wctx, storage.NotificationEntry{
			At:     n.At,
			ChatID: n.ChatID,
			Text:   n.Text,
		})
		if err != nil {
			a.log.Warn("notification history write failed", logx.Err(err))
		}
	}
}
