package service

import (
	"context"
	"math"
	"time"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/events"
)

type TrackerServiceInterface interface {
	Current(ctx context.Context) (int64, error)
	Set(ctx context.Context, value float64, changedBy string) (int64, error)
	Advance(ctx context.Context, changedBy string) (int64, error)
}

// Display is the now-serving counter.
type Display interface {
	Current(ctx context.Context) (int64, error)
	Set(ctx context.Context, value float64) (int64, error)
	Advance(ctx context.Context) (int64, error)
}

type TrackerService struct {
	display Display
	events  events.Publisher
	lg      *logger.Logger
}

func NewTrackerService(display Display, pub events.Publisher, lg *logger.Logger) TrackerServiceInterface {
	return &TrackerService{display: display, events: pub, lg: lg}
}

func (s *TrackerService) Current(ctx context.Context) (int64, error) {
	return s.display.Current(ctx)
}

func (s *TrackerService) Set(ctx context.Context, value float64, changedBy string) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, domain.Invalid("value must be a finite number")
	}
	v, err := s.display.Set(ctx, value)
	if err != nil {
		return 0, err
	}
	s.lg.Info("now_serving_set", map[string]any{"value": v, "changed_by": changedBy})
	s.notify(ctx, v, changedBy)
	return v, nil
}

func (s *TrackerService) Advance(ctx context.Context, changedBy string) (int64, error) {
	v, err := s.display.Advance(ctx)
	if err != nil {
		return 0, err
	}
	s.lg.Info("now_serving_advanced", map[string]any{"value": v, "changed_by": changedBy})
	s.notify(ctx, v, changedBy)
	return v, nil
}

func (s *TrackerService) notify(ctx context.Context, v int64, changedBy string) {
	ev := domain.Event{
		Type:       domain.EventNowServingUpdated,
		OccurredAt: time.Now().UTC(),
		NowServing: &v,
		ChangedBy:  changedBy,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.lg.Warn("event_publish_failed", err, map[string]any{"event": ev.Type})
	}
}
