package auth

import (
	"time"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/identity"
	"tablecheck/internal/microservices/auth/handler"
	"tablecheck/internal/microservices/auth/service"
	"tablecheck/internal/session"
)

type Config struct {
	Cookies     session.Cookies
	Lifetime    time.Duration
	AdminSecret string
}

func Mount(r chi.Router, provider identity.PasswordProvider, sessions service.SessionIssuer, cfg Config) {
	lg := logger.New("auth-service")
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = identity.SessionLifetime
	}
	svc := service.NewAuthService(provider, sessions, cfg.Lifetime, lg)
	handler.Routes(r, handler.NewAuthHandler(svc, cfg.Cookies, cfg.Lifetime, cfg.AdminSecret, lg))
}
