package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/pagewire/assets"
	"github.com/pevans/pagewire/audit"
	"github.com/pevans/pagewire/config"
	"github.com/pevans/pagewire/events"
	"github.com/pevans/pagewire/headlines"
	"github.com/pevans/pagewire/logsink"
	"github.com/pevans/pagewire/metrics"
	"github.com/pevans/pagewire/site"
)

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func handleServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", getEnv("PAGEWIRE_CONFIG", "pagewire.yaml"), "Path to YAML config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Debug)
	slog.SetDefault(logger)

	// The log directory must exist before the first request
	sink, err := logsink.New(cfg.LogDir, logsink.WithLogger(logger), logsink.WithDebug(cfg.Debug))
	if err != nil {
		log.Fatalf("Failed to create log sink: %v", err)
	}

	bus := events.NewBus(logger)
	bus.Subscribe(events.ConsoleEcho(os.Stdout))
	bus.Subscribe(events.RecordTo(sink))

	var store *audit.EventStore
	if cfg.Audit.DSN != "" {
		store, err = audit.NewEventStore(cfg.Audit.DSN)
		if err != nil {
			log.Fatalf("Failed to open audit store: %v", err)
		}
		bus.Subscribe(store.Record)
	}

	m := metrics.New()
	bus.Subscribe(m.EventHandler())

	source, err := headlines.NewSourceFromConfig(cfg.News)
	if err != nil {
		log.Fatalf("Failed to create headline source: %v", err)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := site.NewServer(
		site.DefaultRouteTable(),
		assets.NewDirFetcher(cfg.AssetRoot, bus),
		bus,
		source,
		site.WithLogger(logger),
		site.WithDebug(cfg.Debug),
		site.WithResponseObserver(m.ObserveResponse),
	)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Listen != "" {
		metricsServer = m.NewServer(cfg.Metrics.Listen)
		go func() {
			logger.Info("serving metrics", "addr", cfg.Metrics.Listen)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	go func() {
		log.Printf("Server is running on %s...", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}

	// Drain queued log lines only after in-flight requests are done
	if err := sink.Close(); err != nil {
		logger.Error("log sink close failed", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("audit store close failed", "error", err)
		}
	}
}
