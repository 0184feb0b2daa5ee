package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MicahParks/keyfunc"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/config"
	"tablecheck/internal/connections/database"
	"tablecheck/internal/connections/mongodb"
	"tablecheck/internal/connections/rabbitmq"
	"tablecheck/internal/connections/redisdb"
	"tablecheck/internal/docstore"
	"tablecheck/internal/events"
	"tablecheck/internal/identity"
)

// Run builds every dependency once and serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("api")

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(cctx); err != nil {
			lg.Warn("store_close_failed", err, nil)
		}
	}()
	lg.Info("store_ready", map[string]any{"driver": cfg.Store.Driver})

	verifier, closeVerifier, err := providerVerifier(cfg.Identity, lg)
	if err != nil {
		return err
	}
	defer closeVerifier()

	sessions := identity.NewSessions([]byte(cfg.Identity.SessionSecret), cfg.Identity.SessionIssuer,
		verifier, identity.NewDocRevocations(store))
	provider := identity.NewToolkitClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, cfg.Identity.Timeout)

	var pub events.Publisher = events.Noop{}
	if cfg.RabbitMQ.Enabled {
		rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer rmq.Close()
		if err := rmq.DeclareFanout(cfg.RabbitMQ.Exchange, ""); err != nil {
			return err
		}
		async := events.NewAsync(events.NewRabbitPublisher(rmq, cfg.RabbitMQ.Exchange), lg)
		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := async.Close(cctx); err != nil {
				lg.Warn("event_drain_incomplete", err, nil)
			}
		}()
		pub = async
		lg.Info("rabbitmq_connected", map[string]any{"exchange": cfg.RabbitMQ.Exchange})
	}

	h := NewRouter(cfg, Deps{Store: store, Sessions: sessions, Provider: provider, Events: pub})
	srv := httpx.New(":"+strconv.Itoa(cfg.Server.Port), h, httpx.Options{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	lg.Info("service_started", map[string]any{"port": cfg.Server.Port})
	return srv.Run(ctx)
}

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return docstore.NewMemory(), nil
	case "postgres":
		pool, err := database.ConnectDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		pg := docstore.NewPostgres(pool, cfg.Store.MaxAttempts)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return docstore.NewMongo(client, cfg.Mongo.Database), nil
	case "redis":
		client, err := redisdb.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return docstore.NewRedis(client, "tablecheck", cfg.Store.MaxAttempts), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func providerVerifier(cfg config.IdentityConfig, lg *logger.Logger) (identity.TokenVerifier, func(), error) {
	if cfg.ProviderSecret != "" {
		lg.Warn("provider_hs256_mode", errors.New("provider tokens are verified with a shared secret"), nil)
		return identity.NewHMACVerifier([]byte(cfg.ProviderSecret), cfg.ProjectID), func() {}, nil
	}
	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			lg.Error("jwks_refresh_failed", err, nil)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("jwks: %w", err)
	}
	return identity.NewJWKSVerifier(jwks, cfg.ProjectID), jwks.EndBackground, nil
}
