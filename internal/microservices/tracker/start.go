package tracker

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/events"
	"tablecheck/internal/microservices/tracker/handler"
	"tablecheck/internal/microservices/tracker/service"
)

func Mount(r chi.Router, display service.Display, pub events.Publisher, requireSession func(http.Handler) http.Handler) {
	lg := logger.New("now-serving")
	svc := service.NewService(display, pub, lg)
	handler.Routes(r, handler.New(svc, lg), requireSession)
}
