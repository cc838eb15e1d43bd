package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/contactform/internal"
	"github.com/DukeRupert/contactform/internal/contact"
	"github.com/DukeRupert/contactform/internal/handler"
	"github.com/DukeRupert/contactform/internal/metrics"
	"github.com/DukeRupert/contactform/internal/middleware"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Delivery provider
	sender, err := internal.NewSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("delivery provider initialization failed: %w", err)
	}

	policy, err := contact.ParsePolicy(cfg.SendPolicy)
	if err != nil {
		return fmt.Errorf("send policy: %w", err)
	}

	// A missing identifier does not stop the server: the page still renders
	// and every submission is refused with the unavailable message.
	deliveryCfg, err := contact.LoadDeliveryConfigFromEnv(logger)
	if err != nil {
		logger.Warn("contact submissions disabled until delivery configuration is complete")
		deliveryCfg = nil
	}

	orchestrator := contact.NewOrchestrator(contact.OrchestratorConfig{
		Sender:  sender,
		Policy:  policy,
		Timeout: cfg.DeliveryTimeout,
		Logger:  logger,
	})

	registry := contact.NewRegistry(contact.FormOptions{
		Orchestrator:   orchestrator,
		Config:         deliveryCfg,
		SuccessDisplay: cfg.SuccessDisplay,
	}, cfg.FormIdleTTL, logger)
	defer registry.Close()

	logger.Info("Delivery ready",
		"provider", cfg.DeliveryProvider,
		"policy", policy,
		"configured", deliveryCfg != nil,
	)

	// Initialize template renderer
	isDev := cfg.Env == "development"
	rendererCfg := handler.RendererConfig{Logger: logger}
	if cfg.TemplatesDir != "" && isDev {
		rendererCfg.TemplatesDir = cfg.TemplatesDir
		rendererCfg.IsDev = true
	}
	renderer, err := handler.NewRenderer(rendererCfg)
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Debug("Pages available", "pages", renderer.ListTemplates(), "from_disk", rendererCfg.TemplatesDir != "")

	// Initialize handlers and middleware
	isSecure := !isDev
	contactHandler := handler.NewContactHandler(handler.ContactHandlerConfig{
		Registry:       registry,
		Renderer:       renderer,
		Logger:         logger,
		SuccessDisplay: cfg.SuccessDisplay,
		IsSecure:       isSecure,
	})

	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuthMw.Enabled() && !isDev {
		logger.Warn("/metrics is not protected; set METRICS_USERNAME and METRICS_PASSWORD")
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Metrics
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Contact form
	contactHandler.RegisterRoutes(mux)

	stack := middleware.Stack(loggingMw.Handler, securityMw.Handler, metrics.Middleware)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Let fire-and-forget admin notifications finish
	done := make(chan struct{})
	go func() {
		orchestrator.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("Pending admin notifications abandoned at shutdown")
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
