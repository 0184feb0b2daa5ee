package service

import (
	"context"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
)

// Consumer is the part of the broker client the subscriber needs.
type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, func(), error)
}

type NotificatorService struct {
	consumer Consumer
	queue    string
	lg       *logger.Logger
}

func NewNotificatorService(c Consumer, queue string, lg *logger.Logger) *NotificatorService {
	return &NotificatorService{consumer: c, queue: queue, lg: lg}
}

// Notify consumes queue notifications until ctx is done or the channel closes.
func (ns *NotificatorService) Notify(ctx context.Context) error {
	msgs, stop, err := ns.consumer.Consume(ns.queue, "notification-subscriber", 10)
	if err != nil {
		return err
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			ns.Handle(d.Body)
			_ = d.Ack(false)
		}
	}
}

// Handle logs one event. Undecodable messages are logged and dropped.
func (ns *NotificatorService) Handle(body []byte) {
	var ev domain.Event
	if err := sonic.ConfigStd.Unmarshal(body, &ev); err != nil {
		ns.lg.Warn("notification_malformed", err, map[string]any{"bytes": len(body)})
		return
	}
	fields := map[string]any{"event": ev.Type, "occurred_at": ev.OccurredAt, "changed_by": ev.ChangedBy}
	switch ev.Type {
	case domain.EventOrderPlaced:
		if ev.Order != nil {
			fields["order_id"] = ev.Order.ID
			fields["ticket"] = ev.Order.TicketNumber
			fields["total"] = ev.Order.Total
		}
	case domain.EventNowServingUpdated:
		if ev.NowServing != nil {
			fields["now_serving"] = *ev.NowServing
		}
	}
	ns.lg.Info("notification_received", fields)
}
