package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a notification. Implementations: Mailer (SMTP),
// queue.Publisher (RabbitMQ), Async (background wrapper) and Noop.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// Noop discards every message.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }

// Async hands messages to the wrapped Sender on a background goroutine and
// returns immediately. Failures are logged, never returned. The send runs
// detached from the caller's cancellation with its own timeout.
type Async struct {
	next    Sender
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Sender, log *zap.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Async{next: next, log: log, timeout: timeout}
}

func (a *Async) Send(ctx context.Context, m Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("notification panicked", zap.String("kind", string(m.Kind)), zap.Any("panic", r))
			}
		}()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Send(sendCtx, m); err != nil {
			a.log.Warn("notification not delivered",
				zap.String("kind", string(m.Kind)),
				zap.String("to", m.To),
				zap.Error(err))
			return
		}
		a.log.Debug("notification delivered", zap.String("kind", string(m.Kind)), zap.String("to", m.To))
	}()
	return nil
}

// Close waits for in-flight sends or until ctx is done.
func (a *Async) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifications still in flight: %w", ctx.Err())
	}
}
