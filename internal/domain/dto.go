package domain

import "time"

type CreateOrderRequest struct {
	Items    []OrderItem `json:"items"`
	Subtotal float64     `json:"subtotal"`
	Tax      float64     `json:"tax"`
	Total    float64     `json:"total"`
	Note     string      `json:"note"`
}

type CreateOrderResponse struct {
	OrderID      string    `json:"orderId"`
	TicketNumber string    `json:"ticketNumber"`
	Subtotal     float64   `json:"subtotal"`
	Tax          float64   `json:"tax"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

type NowServingResponse struct {
	Value int64 `json:"value"`
}

type TableLookupResponse struct {
	PhoneNumber string `json:"phoneNumber"`
	TableNumber string `json:"tableNumber"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
