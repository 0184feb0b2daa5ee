package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config хранит все параметры приложения
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Identity IdentityConfig `yaml:"identity"`
	Cookies  CookieConfig   `yaml:"cookies"`
	Queue    QueueConfig    `yaml:"queue"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowAnyOrigin  bool          `yaml:"allow_any_origin"`
	AdminSecret     string        `yaml:"admin_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"` // memory | postgres | mongo | redis
	MaxAttempts int    `yaml:"max_attempts"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type MongoConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"use_tls"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type IdentityConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	ProjectID       string        `yaml:"project_id"`
	JWKSURL         string        `yaml:"jwks_url"`
	ProviderSecret  string        `yaml:"provider_secret"` // HS256 provider tokens, local/emulator only
	SessionSecret   string        `yaml:"session_secret"`
	SessionIssuer   string        `yaml:"session_issuer"`
	SessionLifetime time.Duration `yaml:"session_lifetime"`
	Timeout         time.Duration `yaml:"timeout"`
}

type CookieConfig struct {
	SameSite string `yaml:"same_site"`
	Secure   bool   `yaml:"secure"`
}

type QueueConfig struct {
	Collection    string `yaml:"collection"`
	TicketKey     string `yaml:"ticket_key"`
	NowServingKey string `yaml:"now_serving_key"`
	PublishMode   string `yaml:"publish_mode"` // monotonic | force
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowAnyOrigin:  true,
		},
		Log:      LogConfig{Level: "info"},
		Store:    StoreConfig{Driver: "memory", MaxAttempts: 25},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		Mongo:    MongoConfig{URL: "mongodb://localhost:27017", Database: "tablecheck"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		RabbitMQ: RabbitMQConfig{Port: 5672, VHost: "/", Exchange: "notifications_fanout", Queue: "notifications.q"},
		Identity: IdentityConfig{
			BaseURL:         "https://identitytoolkit.googleapis.com",
			JWKSURL:         "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com",
			SessionIssuer:   "tablecheck",
			SessionLifetime: 7 * 24 * time.Hour,
			Timeout:         10 * time.Second,
		},
		Cookies: CookieConfig{SameSite: "None", Secure: true},
		Queue: QueueConfig{
			Collection:    "counters",
			TicketKey:     "orderQueue",
			NowServingKey: "nowServing",
			PublishMode:   "monotonic",
		},
	}
}

// LoadConfig reads the YAML file at path (a missing file is fine: defaults apply),
// then applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	// Only the literal "false" switches these off.
	notFalse := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			*dst = v != "false"
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	str("LOG_LEVEL", &cfg.Log.Level)
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("FIREBASE_WEB_API_KEY", &cfg.Identity.APIKey)
	str("FIREBASE_PROJECT_ID", &cfg.Identity.ProjectID)
	str("SESSION_SECRET", &cfg.Identity.SessionSecret)
	str("ADMIN_SECRET", &cfg.Server.AdminSecret)
	str("COOKIE_SAMESITE", &cfg.Cookies.SameSite)
	notFalse("ALLOW_ANY_ORIGIN", &cfg.Server.AllowAnyOrigin)
	notFalse("COOKIE_SECURE", &cfg.Cookies.Secure)
	str("DATABASE_PASSWORD", &cfg.Database.Password)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("RABBITMQ_PASSWORD", &cfg.RabbitMQ.Password)
	return nil
}

func (c *Config) Validate() error {
	var problems []string

	if c.Identity.SessionSecret == "" {
		problems = append(problems, "identity.session_secret (SESSION_SECRET) is required")
	}
	if c.Identity.APIKey == "" {
		problems = append(problems, "identity.api_key (FIREBASE_WEB_API_KEY) is required")
	}
	if c.Identity.ProviderSecret == "" && c.Identity.ProjectID == "" {
		problems = append(problems, "identity.project_id is required unless identity.provider_secret is set")
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			problems = append(problems, "database host/user/database are required for the postgres driver")
		}
	case "mongo":
		if c.Mongo.URL == "" || c.Mongo.Database == "" {
			problems = append(problems, "mongo url/database are required for the mongo driver")
		}
	case "redis":
		if c.Redis.Addr == "" {
			problems = append(problems, "redis addr is required for the redis driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}

	if c.RabbitMQ.Enabled && (c.RabbitMQ.Host == "" || c.RabbitMQ.User == "") {
		problems = append(problems, "rabbitmq host/user are required when rabbitmq is enabled")
	}

	switch strings.ToLower(c.Cookies.SameSite) {
	case "none", "lax", "strict":
	default:
		problems = append(problems, fmt.Sprintf("cookies.same_site must be None, Lax or Strict, got %q", c.Cookies.SameSite))
	}

	switch c.Queue.PublishMode {
	case "monotonic", "force":
	default:
		problems = append(problems, fmt.Sprintf("queue.publish_mode must be monotonic or force, got %q", c.Queue.PublishMode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
