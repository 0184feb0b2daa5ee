package service

import (
	"tablecheck/internal/common/logger"
	"tablecheck/internal/events"
	"tablecheck/internal/microservices/order/repository"
)

type Service struct {
	OrderService OrderServiceInterface
}

func New(repo *repository.Repository, tickets TicketIssuer, announcer Announcer, pub events.Publisher, lg *logger.Logger) *Service {
	return &Service{
		OrderService: NewOrderService(repo.OrderRepo, tickets, announcer, pub, lg),
	}
}
