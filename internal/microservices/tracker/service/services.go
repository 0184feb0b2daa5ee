package service

import (
	"tablecheck/internal/common/logger"
	"tablecheck/internal/events"
)

type Service struct {
	TrackerService TrackerServiceInterface
}

func NewService(display Display, pub events.Publisher, lg *logger.Logger) *Service {
	return &Service{TrackerService: NewTrackerService(display, pub, lg)}
}
