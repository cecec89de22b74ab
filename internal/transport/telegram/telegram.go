// Package telegram implements the transport.Sink contract on top of telebot.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	Token string

	// ClientTimeout bounds a single Bot API call. Defaults to 10s.
	ClientTimeout time.Duration
}

// Sink is a send-only Telegram client. The bot never receives updates, so no
// poller is configured and Start is never called on the underlying bot.
type Sink struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.ClientTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Sink{cfg: cfg, log: log, bot: b}, nil
}

func (s *Sink) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if opt == nil {
		opt = &transport.SendOptions{}
	}
	if err := ctx.Err(); err != nil {
		return transport.MessageRef{}, err
	}

	chat := &tele.Chat{ID: to.ChatID}
	sendOpt := &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	}

	msg, err := s.bot.Send(chat, text, sendOpt)
	if err != nil {
		return transport.MessageRef{}, err
	}
	return transport.MessageRef{ChatID: to.ChatID, MessageID: msg.ID}, nil
}

func (s *Sink) Close(ctx context.Context) error {
	// telebot holds no long-lived connections when no poller runs.
	_ = ctx
	s.log.Debug("telegram sink closed")
	return nil
}
