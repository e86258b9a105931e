package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"route-finder-service/internal/adapters"
	"route-finder-service/internal/api"
	"route-finder-service/internal/config"
	"route-finder-service/internal/platform/logging"
	"route-finder-service/internal/platform/telemetry"
	"route-finder-service/internal/services"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires the configured geocoding and routing adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "err", err)
		} else {
			defer shutdown()
		}
	}

	pipeline, err := adapters.NewPipeline(cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	app := api.NewRouter(api.Dependencies{
		Pipeline:       pipeline,
		Sessions:       services.NewSessionRegistry(pipeline, cfg.Server.MaxSessions),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   writeTimeout,
		RequestTimeout: writeTimeout,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("server listening",
			"addr", addr,
			"geocoder", cfg.Geocoder.Provider,
			"router", cfg.Router.Provider,
		)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	// In-flight route requests get up to 10s to complete.
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	slog.Info("server stopped")
}
