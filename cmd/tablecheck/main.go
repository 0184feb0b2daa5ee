package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"tablecheck/internal/app/api"
	"tablecheck/internal/app/notify"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/config"
)

func main() {
	mode := flag.String("mode", "api", "api | notification-subscriber")
	configPath := flag.String("config", "", "path to the YAML config (default: config.yaml if present)")
	port := flag.Int("port", 0, "api: http port, overrides config and PORT")
	flag.Parse()

	lg := logger.New("bootstrap")

	path := *configPath
	if path == "" {
		found, err := config.FindConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			lg.Error("config_lookup_failed", err, nil)
			os.Exit(1)
		}
		path = found
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		lg.Error("config_invalid", err, map[string]any{"path": path})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "api":
		lg.Info("service_starting", map[string]any{"mode": *mode, "port": cfg.Server.Port, "store": cfg.Store.Driver})
		if err := api.Run(ctx, cfg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		lg.Info("service_starting", map[string]any{"mode": *mode})
		if err := notify.Run(ctx, cfg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be api or notification-subscriber")
		os.Exit(2)
	}
	lg.Info("service_stopped", map[string]any{"mode": *mode})
}
