// Package transport defines the narrow messaging-sink contract the bot core
// depends on. Concrete clients (Telegram today) live in subpackages; the core
// never imports them directly.
package transport

import "context"

type ChatTarget struct {
	ChatID   int64
	ThreadID int // telegram forum topic thread id (0 if none)
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sink delivers outbound text messages. Implementations are expected to be
// safe for use from a single goroutine; the notify service serializes sends.
type Sink interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	Close(ctx context.Context) error
}
