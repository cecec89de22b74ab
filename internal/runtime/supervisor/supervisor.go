// Package supervisor manages named goroutines tied to a shared context:
// panic recovery, graceful stop, timeout-aware waiting.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	logx "hwbot/pkg/logx"
)

type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	log logx.Logger

	doneOnce sync.Once
	doneCh   chan struct{}
	wg       sync.WaitGroup
}

type Option func(*Supervisor)

func WithLogger(log logx.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

func New(parent context.Context, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{
		ctx:    ctx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log.IsZero() {
		s.log = logx.Nop()
	}
	return s
}

func (s *Supervisor) Context() context.Context { return s.ctx }

// Go runs fn on a new goroutine. A panic is recovered and logged with the
// goroutine's name; it never takes down the process.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("goroutine panic",
					logx.String("name", name),
					logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())),
				)
			}
		}()
		err := fn(s.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("goroutine exited with error", logx.String("name", name), logx.Err(err))
			return
		}
		s.log.Debug("goroutine exited", logx.String("name", name))
	}()
}

// Cancel stops the supervised context.
func (s *Supervisor) Cancel() { s.cancel() }

// Wait blocks until every goroutine has returned or ctx expires.
func (s *Supervisor) Wait(ctx context.Context) error {
	go s.closeWhenDone()
	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("supervisor wait: %w", ctx.Err())
	}
}

func (s *Supervisor) closeWhenDone() {
	s.doneOnce.Do(func() {
		s.wg.Wait()
		close(s.doneCh)
	})
}
