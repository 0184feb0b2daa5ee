package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
)

func init() { logger.SetOutput(io.Discard) }

type fakeBroker struct {
	exchange, key string
	body          []byte
	headers       amqp.Table
	persistent    bool
	err           error
}

func (f *fakeBroker) Publish(_ context.Context, exchange, key string, body []byte, headers amqp.Table, _ string, persistent bool) error {
	f.exchange, f.key, f.body, f.headers, f.persistent = exchange, key, body, headers, persistent
	return f.err
}

func TestRabbitPublisherSendsEnvelope(t *testing.T) {
	b := &fakeBroker{}
	v := int64(5)
	err := NewRabbitPublisher(b, "notifications_fanout").Publish(context.Background(), domain.Event{
		Type:       domain.EventNowServingUpdated,
		NowServing: &v,
	})
	require.NoError(t, err)

	assert.Equal(t, "notifications_fanout", b.exchange)
	assert.Equal(t, domain.EventNowServingUpdated, b.key)
	assert.True(t, b.persistent)
	assert.Equal(t, domain.EventNowServingUpdated, b.headers["x-event"])

	var got domain.Event
	require.NoError(t, json.Unmarshal(b.body, &got))
	require.NotNil(t, got.NowServing)
	assert.EqualValues(t, 5, *got.NowServing)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestRabbitPublisherWrapsBrokerError(t *testing.T) {
	b := &fakeBroker{err: errors.New("nack")}
	err := NewRabbitPublisher(b, "x").Publish(context.Background(), domain.Event{Type: domain.EventOrderPlaced})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.placed")
}

// gatedPublisher blocks every publish until release is closed.
type gatedPublisher struct {
	release chan struct{}
	sent    chan string
}

func (g *gatedPublisher) Publish(_ context.Context, ev domain.Event) error {
	<-g.release
	g.sent <- ev.Type
	return nil
}

func TestAsyncCloseWaitsForInFlight(t *testing.T) {
	g := &gatedPublisher{release: make(chan struct{}), sent: make(chan string, 2)}
	a := NewAsync(g, logger.New("test"))

	require.NoError(t, a.Publish(context.Background(), domain.Event{Type: domain.EventOrderPlaced}))
	require.NoError(t, a.Publish(context.Background(), domain.Event{Type: domain.EventNowServingUpdated}))

	closed := make(chan error, 1)
	go func() { closed <- a.Close(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("Close returned before publishes finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(g.release)
	require.NoError(t, <-closed)
	assert.Len(t, g.sent, 2)
}

func TestAsyncCloseHonoursDeadline(t *testing.T) {
	g := &gatedPublisher{release: make(chan struct{}), sent: make(chan string, 1)}
	defer close(g.release)
	a := NewAsync(g, logger.New("test"))
	require.NoError(t, a.Publish(context.Background(), domain.Event{Type: domain.EventOrderPlaced}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsyncRejectsAfterClose(t *testing.T) {
	a := NewAsync(Noop{}, logger.New("test"))
	require.NoError(t, a.Close(context.Background()))

	err := a.Publish(context.Background(), domain.Event{Type: domain.EventOrderPlaced})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}
