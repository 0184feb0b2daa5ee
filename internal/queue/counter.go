// Package queue issues order tickets and tracks the ticket currently being served.
// Both counters live in the document store and are only incremented inside a store
// transaction.
package queue

import (
	"context"
	"fmt"

	"tablecheck/internal/docstore"
)

const valueField = "value"

// TicketCounter hands out sequential ticket numbers from one counter document.
type TicketCounter struct {
	store      docstore.Store
	collection string
	key        string
}

func NewTicketCounter(store docstore.Store, collection, key string) *TicketCounter {
	return &TicketCounter{store: store, collection: collection, key: key}
}

// NextTicket increments the counter and returns the new value. Concurrent callers never
// receive the same number. When the store gives up retrying the error wraps
// domain.ErrStorageConflict and no ticket was issued.
func (c *TicketCounter) NextTicket(ctx context.Context) (int64, error) {
	n, err := increment(ctx, c.store, c.collection, c.key)
	if err != nil {
		return 0, fmt.Errorf("next ticket: %w", err)
	}
	return n, nil
}

// increment is the shared read-modify-write: absent or non-numeric counts as 0.
func increment(ctx context.Context, store docstore.Store, collection, key string) (int64, error) {
	var next int64
	err := store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, found, err := tx.Get(ctx, collection, key)
		if err != nil {
			return err
		}
		var current int64
		if found {
			current, _ = docstore.Int(doc.Fields[valueField])
		}
		next = current + 1
		return tx.Set(ctx, collection, key, docstore.Fields{valueField: next}, docstore.Merge)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func readValue(doc docstore.Document, found bool) (int64, bool) {
	if !found {
		return 0, false
	}
	return docstore.Int(doc.Fields[valueField])
}
