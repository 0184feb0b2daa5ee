package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/config"
	"tablecheck/internal/docstore"
	"tablecheck/internal/events"
	"tablecheck/internal/identity"
	"tablecheck/internal/microservices/auth"
	"tablecheck/internal/microservices/menu"
	"tablecheck/internal/microservices/order"
	"tablecheck/internal/microservices/table"
	"tablecheck/internal/microservices/tracker"
	"tablecheck/internal/queue"
	"tablecheck/internal/session"
)

// Deps are the long-lived handles shared by every request. They are built once in Run.
type Deps struct {
	Store    docstore.Store
	Sessions *identity.Sessions
	Provider identity.PasswordProvider
	Events   events.Publisher
}

func NewRouter(cfg *config.Config, d Deps) http.Handler {
	lg := logger.New("api")

	tickets := queue.NewTicketCounter(d.Store, cfg.Queue.Collection, cfg.Queue.TicketKey)
	display := queue.NewTracker(d.Store, cfg.Queue.Collection, cfg.Queue.NowServingKey, queue.PublishMode(cfg.Queue.PublishMode))
	gate := session.NewGate(d.Sessions, logger.New("session-gate"))
	cookies := session.Cookies{SameSite: cfg.Cookies.SameSite, Secure: cfg.Cookies.Secure}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(lg))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout(cfg)))
	r.Use(httpx.CORS(cfg.Server.AllowAnyOrigin))

	r.NotFound(httpx.NotFound)
	r.MethodNotAllowed(httpx.NotFound)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Service is running"))
	})

	lifetime := cfg.Identity.SessionLifetime
	if lifetime <= 0 {
		lifetime = identity.SessionLifetime
	}
	auth.Mount(r, d.Provider, d.Sessions, auth.Config{
		Cookies:     cookies,
		Lifetime:    lifetime,
		AdminSecret: cfg.Server.AdminSecret,
	})
	menu.Mount(r, d.Store)
	table.Mount(r, d.Store, gate.Require)
	tracker.Mount(r, display, d.Events, gate.Require)
	order.Mount(r, d.Store, tickets, display, d.Events, gate.Require)

	return r
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.WriteTimeout > time.Second {
		return cfg.Server.WriteTimeout - time.Second
	}
	return 30 * time.Second
}
