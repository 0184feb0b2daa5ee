package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/events"
	"tablecheck/internal/microservices/order/repository"
)

type OrderServiceInterface interface {
	AddOrder(ctx context.Context, userID string, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error)
}

type TicketIssuer interface {
	NextTicket(ctx context.Context) (int64, error)
}

// Announcer puts a freshly issued ticket on the now-serving display.
type Announcer interface {
	Publish(ctx context.Context, ticket int64) (int64, error)
}

type OrderService struct {
	repo      repository.OrderRepositoryInterface
	tickets   TicketIssuer
	announcer Announcer
	events    events.Publisher
	lg        *logger.Logger
	now       func() time.Time
}

func NewOrderService(repo repository.OrderRepositoryInterface, tickets TicketIssuer, announcer Announcer,
	pub events.Publisher, lg *logger.Logger) OrderServiceInterface {
	return &OrderService{repo: repo, tickets: tickets, announcer: announcer, events: pub, lg: lg, now: time.Now}
}

// AddOrder issues a ticket, stores the order and then announces the ticket. The ticket
// and the order are never rolled back: a failed announcement is logged and the order
// still counts as placed.
func (s *OrderService) AddOrder(ctx context.Context, userID string, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	// 1. Basic validation
	if len(req.Items) == 0 {
		return domain.CreateOrderResponse{}, domain.Invalid("items are required")
	}

	// 2. Ticket
	ticket, err := s.tickets.NextTicket(ctx)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}

	// 3. Save order
	order := domain.Order{
		ID:           uuid.NewString(),
		Items:        req.Items,
		Subtotal:     req.Subtotal,
		Tax:          req.Tax,
		Total:        req.Total,
		Note:         req.Note,
		TicketNumber: strconv.FormatInt(ticket, 10),
		Status:       domain.OrderStatusPlaced,
		CreatedAt:    s.now().UTC(),
		UserID:       userID,
	}
	if err := s.repo.AddOrder(ctx, order); err != nil {
		return domain.CreateOrderResponse{}, fmt.Errorf("ticket %d issued but order not saved: %w", ticket, err)
	}
	s.lg.Info("order_placed", map[string]any{"order_id": order.ID, "ticket": ticket, "user_id": userID})

	// 4. Announce
	shown, err := s.announcer.Publish(ctx, ticket)
	if err != nil {
		s.lg.Error("now_serving_publish_failed", err, map[string]any{"order_id": order.ID, "ticket": ticket})
	}

	// 5. Notify
	s.notify(ctx, domain.Event{Type: domain.EventOrderPlaced, Order: &order, ChangedBy: userID})
	if err == nil {
		s.notify(ctx, domain.Event{Type: domain.EventNowServingUpdated, NowServing: &shown, ChangedBy: userID})
	}

	return domain.CreateOrderResponse{
		OrderID:      order.ID,
		TicketNumber: order.TicketNumber,
		Subtotal:     order.Subtotal,
		Tax:          order.Tax,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}, nil
}

func (s *OrderService) notify(ctx context.Context, ev domain.Event) {
	ev.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.lg.Warn("event_publish_failed", err, map[string]any{"event": ev.Type})
	}
}
