package service

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
	"tablecheck/internal/queue"
)

func init() { logger.SetOutput(io.Discard) }

type recordingPublisher struct{ events []domain.Event }

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func TestTrackerService(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTrackerService(queue.NewTracker(docstore.NewMemory(), "counters", "nowServing", ""), pub, logger.New("test"))

	v, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	v, err = svc.Set(ctx, 20, "staff-1")
	require.NoError(t, err)
	assert.EqualValues(t, 20, v)

	v, err = svc.Advance(ctx, "staff-1")
	require.NoError(t, err)
	assert.EqualValues(t, 21, v)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "staff-1", pub.events[1].ChangedBy)
	assert.EqualValues(t, 21, *pub.events[1].NowServing)

	_, err = svc.Set(ctx, math.Inf(-1), "staff-1")
	assert.True(t, domain.IsValidation(err))
}
