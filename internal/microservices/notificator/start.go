package notificator

import (
	"context"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/connections/rabbitmq"
	"tablecheck/internal/microservices/notificator/service"
)

// Start declares the fanout topology and logs every notification until ctx is done.
func Start(ctx context.Context, rmqClient *rabbitmq.Client, exchange, queue string) error {
	lg := logger.New("notification-subscriber")
	if err := rmqClient.DeclareFanout(exchange, queue); err != nil {
		return err
	}
	svc := service.New(rmqClient, queue, lg)
	lg.Info("subscriber_started", map[string]any{"exchange": exchange, "queue": queue})
	return svc.NotificatorService.Notify(ctx)
}
