package domain

import "time"

const (
	EventOrderPlaced       = "order.placed"
	EventNowServingUpdated = "now_serving.updated"
)

// Event is the envelope published to the notifications exchange.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Order      *Order    `json:"order,omitempty"`
	NowServing *int64    `json:"now_serving,omitempty"`
	ChangedBy  string    `json:"changed_by,omitempty"`
}
