package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/notify"
)

// Consumer reads notifications from the queue and hands them to a
// notify.Sender, normally the SMTP mailer. It reconnects with backoff
// until its context is cancelled.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	sender   notify.Sender
	log      *zap.Logger
}

func NewConsumer(url, queue string, sender notify.Sender, log *zap.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, prefetch: 20, sender: sender, log: log}
}

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn("set qos failed", zap.Error(err))
	}
	if err := declare(ch, c.queue); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.log.Info("consuming notifications", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			switch c.handle(ctx, d.Body, d.Redelivered) {
			case ack:
				_ = d.Ack(false)
			case requeue:
				_ = d.Nack(false, true)
			case drop:
				_ = d.Nack(false, false)
			}
		}
	}
}

// handle delivers one message. Undecodable messages are dropped; a failed
// delivery is retried once through a requeue.
func (c *Consumer) handle(ctx context.Context, body []byte, redelivered bool) outcome {
	m, err := decode(body)
	if err != nil {
		c.log.Error("dropping malformed notification", zap.Error(err), zap.ByteString("body", body))
		return drop
	}
	if err := c.sender.Send(ctx, m); err != nil {
		if redelivered {
			c.log.Error("dropping notification after retry",
				zap.String("kind", string(m.Kind)), zap.String("to", m.To), zap.Error(err))
			return drop
		}
		c.log.Warn("notification failed, requeueing",
			zap.String("kind", string(m.Kind)), zap.String("to", m.To), zap.Error(err))
		return requeue
	}
	c.log.Info("notification sent", zap.String("kind", string(m.Kind)), zap.String("to", m.To))
	return ack
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
