package handler

import (
	"tablecheck/internal/common/logger"
	"tablecheck/internal/microservices/tracker/service"
)

type Handler struct {
	TrackerHandler *TrackerHandler
}

func New(svc *service.Service, lg *logger.Logger) *Handler {
	return &Handler{
		TrackerHandler: NewTrackerHandler(svc.TrackerService, lg),
	}
}
