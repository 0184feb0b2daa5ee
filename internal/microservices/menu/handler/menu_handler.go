package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/microservices/menu/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
	lg      *logger.Logger
}

func NewMenuHandler(svc service.MenuServiceInterface, lg *logger.Logger) *MenuHandler {
	return &MenuHandler{service: svc, lg: lg}
}

func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Menu(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to load menu")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func Routes(r chi.Router, h *MenuHandler) {
	r.Get("/menu", h.GetMenu)
}
