package queue

import (
	"context"
	"fmt"
	"math"

	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
)

// MaxDisplayValue bounds what Set accepts; past 2^53 a float no longer holds every integer.
const MaxDisplayValue = 1 << 53

type PublishMode string

const (
	// PublishMonotonic never moves the display backwards.
	PublishMonotonic PublishMode = "monotonic"
	// PublishForce overwrites the display with whatever ticket was placed last.
	PublishForce PublishMode = "force"
)

// Tracker holds the "now serving" number shown to guests.
type Tracker struct {
	store      docstore.Store
	collection string
	key        string
	mode       PublishMode
}

func NewTracker(store docstore.Store, collection, key string, mode PublishMode) *Tracker {
	if mode == "" {
		mode = PublishMonotonic
	}
	return &Tracker{store: store, collection: collection, key: key, mode: mode}
}

// Current returns the displayed number. It is never below 1.
func (t *Tracker) Current(ctx context.Context) (int64, error) {
	doc, found, err := t.store.Get(ctx, t.collection, t.key)
	if err != nil {
		return 0, fmt.Errorf("read now serving: %w", err)
	}
	v, ok := readValue(doc, found)
	if !ok || v <= 0 {
		return 1, nil
	}
	return v, nil
}

// Set stores value as given, without a transaction. NaN and infinities are stored as 0
// and fractions are truncated toward zero. Magnitudes above MaxDisplayValue are rejected.
func (t *Tracker) Set(ctx context.Context, value float64) (int64, error) {
	v, ok := normalize(value)
	if !ok {
		return 0, domain.Invalid("value must be between -%d and %d", int64(MaxDisplayValue), int64(MaxDisplayValue))
	}
	if err := t.store.Set(ctx, t.collection, t.key, docstore.Fields{valueField: v}, docstore.Merge); err != nil {
		return 0, fmt.Errorf("set now serving: %w", err)
	}
	return v, nil
}

// Advance moves the display to the next ticket.
func (t *Tracker) Advance(ctx context.Context) (int64, error) {
	n, err := increment(ctx, t.store, t.collection, t.key)
	if err != nil {
		return 0, fmt.Errorf("advance now serving: %w", err)
	}
	return n, nil
}

// Publish announces a freshly issued ticket and returns the value left on the display.
func (t *Tracker) Publish(ctx context.Context, ticket int64) (int64, error) {
	if t.mode == PublishForce {
		return t.Set(ctx, float64(ticket))
	}

	var shown int64
	err := t.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, found, err := tx.Get(ctx, t.collection, t.key)
		if err != nil {
			return err
		}
		current, _ := readValue(doc, found)
		if current >= ticket {
			shown = current
			return nil
		}
		shown = ticket
		return tx.Set(ctx, t.collection, t.key, docstore.Fields{valueField: ticket}, docstore.Merge)
	})
	if err != nil {
		return 0, fmt.Errorf("publish now serving: %w", err)
	}
	return shown, nil
}

func normalize(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	v = math.Trunc(v)
	if math.Abs(v) > MaxDisplayValue {
		return 0, false
	}
	return int64(v), true
}
