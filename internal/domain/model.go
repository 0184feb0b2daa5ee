package domain

import "time"

const (
	OrderStatusPlaced = "placed"
)

type OrderItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price,omitempty"`
}

type Order struct {
	ID           string      `json:"orderId"`
	Items        []OrderItem `json:"items"`
	Subtotal     float64     `json:"subtotal"`
	Tax          float64     `json:"tax"`
	Total        float64     `json:"total"`
	Note         string      `json:"note"`
	TicketNumber string      `json:"ticketNumber"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UserID       string      `json:"userId"`
}

// TableAssignment maps a guest phone number to the table they were seated at.
type TableAssignment struct {
	PhoneNumber string    `json:"phoneNumber"`
	TableNumber string    `json:"tableNumber"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// MenuItem is a menu document flattened with its id under "id".
type MenuItem map[string]any
