package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/table/service"
	"tablecheck/internal/session"
)

type TableHandler struct {
	service service.TableServiceInterface
	lg      *logger.Logger
}

func NewTableHandler(svc service.TableServiceInterface, lg *logger.Logger) *TableHandler {
	return &TableHandler{service: svc, lg: lg}
}

// Clients have sent the phone and table under several names over time; the first
// one that is set wins. false and 0 count as unset.
type tableRequest map[string]any

func (b tableRequest) first(keys ...string) string {
	for _, k := range keys {
		if !isSet(b[k]) {
			continue
		}
		if s := docstore.String(b[k]); s != "" {
			return s
		}
	}
	return ""
}

func isSet(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	default:
		return true
	}
}

func (b tableRequest) phone() string { return b.first("phoneNumber", "phone", "phone_no") }
func (b tableRequest) table() string { return b.first("tableNumber", "table", "table_no") }

func (h *TableHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Lookup failed")
		return
	}
	resp, err := h.service.Lookup(r.Context(), req.phone())
	if errors.Is(err, domain.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "No table found for that phone number.")
		return
	}
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Lookup failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to save record")
		return
	}
	id, _ := session.IdentityFrom(r.Context())
	resp, err := h.service.Assign(r.Context(), req.phone(), req.table(), id.UID)
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to save record")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func Routes(r chi.Router, h *TableHandler, requireSession func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/table", h.Lookup)
		r.Post("/tables/lookup", h.Lookup)
		r.Put("/table", h.Upsert)
	})
}
