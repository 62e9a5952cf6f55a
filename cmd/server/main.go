package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/ytgrab/internal/api"
	"github.com/iconidentify/ytgrab/internal/api/handler"
	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/resolver"
	"github.com/iconidentify/ytgrab/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ytgrab-server %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ytgrab server",
		"version", Version,
		"build_time", BuildTime,
		"resolver", cfg.Resolver.Endpoint,
		"resolve_timeout", cfg.Resolver.Timeout,
	)

	// Initialize dependencies
	client := resolver.NewClient(cfg.Resolver)
	client.SetLogger(logger.With("component", "resolver"))

	sessionLogger := logger.With("component", "session")
	store := session.NewStore(func() *session.Session {
		return session.New(client,
			session.WithTimeout(cfg.Resolver.Timeout),
			session.WithLogger(sessionLogger),
		)
	}, sessionLogger)

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(store, logger.With("component", "http"))
	healthHandler := handler.NewHealthHandler(store)

	// Setup router
	router := api.NewRouter(searchHandler, healthHandler, logger)

	// Sweep idle sessions in background
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go store.Run(sweepCtx, time.Minute, cfg.Server.SessionTTL)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	cancelSweep()

	// In-flight searches may take up to the resolve timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Resolver.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
