package eventbus

import (
	"testing"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(2)
	defer unsub()

	b.Publish(Event{Type: TypeCycleSuccess, Data: 1})

	select {
	case ev := <-ch:
		if ev.Type != TypeCycleSuccess || ev.Data != 1 {
			t.Fatalf("event = %+v", ev)
		}
		if ev.Time.IsZero() {
			t.Fatal("Publish must stamp the event time")
		}
	default:
		t.Fatal("event not delivered")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: TypeCycleSuccess})
	b.Publish(Event{Type: TypeCycleFailure}) // dropped, must not block

	if got := len(ch); got != 1 {
		t.Fatalf("buffered = %d, want 1", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(1)
	unsub()
	unsub() // idempotent

	b.Publish(Event{Type: TypeNotifySent})

	if _, open := <-ch; open {
		t.Fatal("channel must be closed after unsubscribe")
	}
}
