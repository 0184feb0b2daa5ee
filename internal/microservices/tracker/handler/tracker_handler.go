package handler

import (
	"net/http"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/tracker/service"
	"tablecheck/internal/session"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
	lg      *logger.Logger
}

func NewTrackerHandler(svc service.TrackerServiceInterface, lg *logger.Logger) *TrackerHandler {
	return &TrackerHandler{service: svc, lg: lg}
}

func (h *TrackerHandler) GetNowServing(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Current(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to read now serving")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.NowServingResponse{Value: v})
}

// setRequest keeps value loosely typed so strings and nulls are rejected with a 400
// instead of a decode error.
type setRequest struct {
	Value any `json:"value"`
}

func (h *TrackerHandler) SetNowServing(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to update now serving")
		return
	}
	value, ok := req.Value.(float64)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "value must be a finite number")
		return
	}

	id, _ := session.IdentityFrom(r.Context())
	v, err := h.service.Set(r.Context(), value, id.UID)
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to update now serving")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.NowServingResponse{Value: v})
}

func (h *TrackerHandler) NextNowServing(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFrom(r.Context())
	v, err := h.service.Advance(r.Context(), id.UID)
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to advance now serving")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.NowServingResponse{Value: v})
}
