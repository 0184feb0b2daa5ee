package repository

import (
	"context"
	"fmt"
	"time"

	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
)

const OrdersCollection = "orders"

type OrderRepositoryInterface interface {
	AddOrder(ctx context.Context, order domain.Order) error
}

type OrderRepository struct {
	store docstore.Store
}

func NewOrderRepository(store docstore.Store) OrderRepositoryInterface {
	return &OrderRepository{store: store}
}

// AddOrder writes the order record once; orders are not updated afterwards.
func (or *OrderRepository) AddOrder(ctx context.Context, order domain.Order) error {
	if err := or.store.Set(ctx, OrdersCollection, order.ID, orderFields(order), docstore.Overwrite); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return nil
}

// Items are stored as plain maps so every backend (BSON included) keeps the same keys.
func orderFields(o domain.Order) docstore.Fields {
	items := make([]any, 0, len(o.Items))
	for _, it := range o.Items {
		m := map[string]any{"id": it.ID, "qty": it.Qty}
		if it.Name != "" {
			m["name"] = it.Name
		}
		if it.Price != 0 {
			m["price"] = it.Price
		}
		items = append(items, m)
	}
	return docstore.Fields{
		"items":        items,
		"subtotal":     o.Subtotal,
		"tax":          o.Tax,
		"total":        o.Total,
		"note":         o.Note,
		"ticketNumber": o.TicketNumber,
		"status":       o.Status,
		"createdAt":    o.CreatedAt.UTC().Format(time.RFC3339Nano),
		"userId":       o.UserID,
	}
}
