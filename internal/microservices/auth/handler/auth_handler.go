package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/identity"
	"tablecheck/internal/microservices/auth/service"
	"tablecheck/internal/session"
)

type AuthHandler struct {
	service     service.AuthServiceInterface
	cookies     session.Cookies
	lifetime    time.Duration
	adminSecret string
	lg          *logger.Logger
}

func NewAuthHandler(svc service.AuthServiceInterface, cookies session.Cookies, lifetime time.Duration,
	adminSecret string, lg *logger.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, lifetime: lifetime, adminSecret: adminSecret, lg: lg}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if h.adminSecret != "" &&
		subtle.ConstantTimeCompare([]byte(r.Header.Get("x-admin-secret")), []byte(h.adminSecret)) != 1 {
		httpx.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var creds domain.Credentials
	if err := httpx.DecodeJSON(r, &creds); err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to sign up user")
		return
	}
	resp, cred, err := h.service.SignUp(r.Context(), creds)
	if errors.Is(err, service.ErrTokenAfterSignUp) {
		h.lg.Error("signup_token_failed", err, nil)
		httpx.WriteError(w, http.StatusInternalServerError, "User created but token fetch failed")
		return
	}
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Unable to sign up user")
		return
	}
	h.cookies.Issue(w, cred, h.lifetime)
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := httpx.DecodeJSON(r, &creds); err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Signin error")
		return
	}
	cred, err := h.service.SignIn(r.Context(), creds)
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		h.lg.Warn("signin_rejected", err, nil)
		msg := pe.Message
		if msg == "" {
			msg = "Signin failed"
		}
		httpx.WriteError(w, http.StatusUnauthorized, msg)
		return
	}
	if err != nil {
		httpx.WriteServiceError(w, h.lg, err, "Signin error")
		return
	}
	h.cookies.Issue(w, cred, h.lifetime)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cred := session.ParseCookies(r.Header.Get("Cookie"))[session.CookieName]
	if err := h.service.SignOut(r.Context(), cred); err != nil {
		h.lg.Error("signout_revoke_failed", err, nil)
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func Routes(r chi.Router, h *AuthHandler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)
		r.Post("/signout", h.SignOut)
	})
}
