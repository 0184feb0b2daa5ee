// Package events publishes queue and order notifications to the broker.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type broker interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table, contentType string, persistent bool) error
}

type RabbitPublisher struct {
	client   broker
	exchange string
	timeout  time.Duration
}

func NewRabbitPublisher(client broker, exchange string) *RabbitPublisher {
	return &RabbitPublisher{client: client, exchange: exchange, timeout: 5 * time.Second}
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev domain.Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := sonic.ConfigStd.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	headers := amqp.Table{"x-source": "tablecheck", "x-event": ev.Type}
	if err := p.client.Publish(ctx, p.exchange, ev.Type, body, headers, "application/json", true); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, domain.Event) error { return nil }

var ErrPublisherClosed = errors.New("publisher closed")

// Async publishes in the background so request handlers never wait on the broker.
// Failures are logged and otherwise ignored. Close waits for publishes in flight.
type Async struct {
	next Publisher
	lg   *logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsync(next Publisher, lg *logger.Logger) *Async {
	return &Async{next: next, lg: lg}
}

func (a *Async) Publish(ctx context.Context, ev domain.Event) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrPublisherClosed
	}
	a.wg.Add(1)
	a.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer a.wg.Done()
		if err := a.next.Publish(ctx, ev); err != nil {
			a.lg.Error("event_publish_failed", err, map[string]any{"event": ev.Type})
		}
	}()
	return nil
}

// Close stops accepting events and waits for the ones in flight, or until ctx is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}
