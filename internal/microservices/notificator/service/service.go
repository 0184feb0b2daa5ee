package service

import "tablecheck/internal/common/logger"

type Service struct {
	NotificatorService *NotificatorService
}

func New(c Consumer, queue string, lg *logger.Logger) *Service {
	return &Service{NotificatorService: NewNotificatorService(c, queue, lg)}
}
