package notify

import (
	"context"
	"errors"
	"testing"

	"hwbot/internal/eventbus"
	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSink struct {
	sent []string
	to   []transport.ChatTarget
	err  error
}

func (f *fakeSink) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if f.err != nil {
		return transport.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, to)
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeSink) Close(ctx context.Context) error { return nil }

func TestSendDeliversToConfiguredChat(t *testing.T) {
	sink := &fakeSink{}
	s := New(Config{Target: transport.ChatTarget{ChatID: 42}, RatePerSec: 100}, sink, logx.Nop(), nil)

	if ok := s.Send(context.Background(), "hello"); !ok {
		t.Fatal("Send reported failure")
	}
	if len(sink.sent) != 1 || sink.sent[0] != "hello" {
		t.Fatalf("sink got %#v", sink.sent)
	}
	if sink.to[0].ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", sink.to[0].ChatID)
	}
	if h := s.Snapshot(); len(h) != 1 || h[0].Text != "hello" {
		t.Fatalf("history = %#v", h)
	}
}

func TestSendSwallowsSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("telegram down")}
	s := New(Config{Target: transport.ChatTarget{ChatID: 42}, RatePerSec: 100}, sink, logx.Nop(), nil)

	if ok := s.Send(context.Background(), "hello"); ok {
		t.Fatal("Send must report failure")
	}
	if len(s.Snapshot()) != 0 {
		t.Fatal("failed sends must not enter history")
	}
}

func TestSendPublishesBusEvents(t *testing.T) {
	bus := eventbus.New()
	ch, unsub := bus.Subscribe(4)
	defer unsub()

	sink := &fakeSink{}
	s := New(Config{Target: transport.ChatTarget{ChatID: 7}, RatePerSec: 100}, sink, logx.Nop(), bus)
	s.Send(context.Background(), "ping")

	select {
	case ev := <-ch:
		if ev.Type != eventbus.TypeNotifySent {
			t.Fatalf("event type = %q", ev.Type)
		}
		se, ok := ev.Data.(SentEvent)
		if !ok || se.Text != "ping" || se.ChatID != 7 {
			t.Fatalf("payload = %#v", ev.Data)
		}
	default:
		t.Fatal("no event published")
	}
}

func TestSendEmptyTextIsNoop(t *testing.T) {
	sink := &fakeSink{}
	s := New(Config{Target: transport.ChatTarget{ChatID: 1}, RatePerSec: 100}, sink, logx.Nop(), nil)

	if s.Send(context.Background(), "") {
		t.Fatal("empty text must not be sent")
	}
	if len(sink.sent) != 0 {
		t.Fatalf("sink got %#v", sink.sent)
	}
}
