package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers the now-serving endpoints. Reads are public, writes need a session.
func Routes(r chi.Router, h *Handler, requireSession func(http.Handler) http.Handler) {
	r.Get("/now-serving", h.TrackerHandler.GetNowServing)
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/now-serving", h.TrackerHandler.SetNowServing)
		r.Post("/now-serving/next", h.TrackerHandler.NextNowServing)
	})
}
