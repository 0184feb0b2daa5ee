package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
)

const maxBody = 1 << 20

// WriteJSON отдаёт JSON с нужным статусом
func WriteJSON(w http.ResponseWriter, code int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// WriteError — единый формат ошибок: {"error": msg}
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]string{"error": msg})
}

// WriteServiceError converts a service error into a response. Internal errors are logged
// and answered with fallback, so nothing from the store or the provider leaks out.
func WriteServiceError(w http.ResponseWriter, lg *logger.Logger, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotSignedIn):
		WriteError(w, http.StatusUnauthorized, "Not signed in")
	case errors.Is(err, domain.ErrInvalidSession):
		lg.Warn("session_rejected", err, nil)
		WriteError(w, http.StatusUnauthorized, "Invalid session")
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not found")
	default:
		fields := map[string]any{}
		switch {
		case errors.Is(err, domain.ErrStorageConflict):
			fields["kind"] = "storage_conflict"
		case errors.Is(err, domain.ErrUpstream):
			fields["kind"] = "upstream"
		}
		lg.Error("request_failed", err, fields)
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// DecodeJSON reads a JSON request body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return domain.Invalid("Unable to read request body")
	}
	if len(b) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(b, dst); err != nil {
		return domain.Invalid("Invalid JSON body")
	}
	return nil
}
