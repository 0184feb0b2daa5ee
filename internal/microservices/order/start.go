package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/events"
	"tablecheck/internal/microservices/order/handlers"
	"tablecheck/internal/microservices/order/repository"
	"tablecheck/internal/microservices/order/service"
)

// Mount wires the order stack and registers POST /orders behind requireSession.
func Mount(r chi.Router, store docstore.Store, tickets service.TicketIssuer, announcer service.Announcer,
	pub events.Publisher, requireSession func(http.Handler) http.Handler) {
	lg := logger.New("order-service")

	repo := repository.New(store)
	svc := service.New(repo, tickets, announcer, pub, lg)
	h := handlers.New(svc, lg)

	r.With(requireSession).Post("/orders", h.OrderHandler.AddOrder)
}
