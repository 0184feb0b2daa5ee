package notify

import (
	"context"
	"errors"
	"fmt"

	"tablecheck/internal/config"
	"tablecheck/internal/connections/rabbitmq"
	"tablecheck/internal/microservices/notificator"
)

// Run consumes the notifications queue until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if !cfg.RabbitMQ.Enabled {
		return errors.New("notification-subscriber needs rabbitmq.enabled")
	}
	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	defer rmq.Close()
	return notificator.Start(ctx, rmq, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue)
}
