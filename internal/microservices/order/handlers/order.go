package handlers

import (
	"net/http"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/order/service"
	"tablecheck/internal/session"
)

type OrderHandler struct {
	service service.OrderServiceInterface
	lg      *logger.Logger
}

func NewOrderHandler(s service.OrderServiceInterface, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{service: s, lg: lg}
}

func (oh *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteServiceError(w, oh.lg, err, "Unable to place order")
		return
	}

	id, _ := session.IdentityFrom(r.Context())
	resp, err := oh.service.AddOrder(r.Context(), id.UID, req)
	if err != nil {
		httpx.WriteServiceError(w, oh.lg, err, "Unable to place order")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}
