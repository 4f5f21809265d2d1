// Package main is the entry point for the TestifyHub marketplace server.
// It loads configuration, builds the in-memory catalog, connects to the
// optional session store and the AI provider, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testifyhub/internal/advisor"
	"testifyhub/internal/ai"
	"testifyhub/internal/cache"
	"testifyhub/internal/catalog"
	"testifyhub/internal/config"
	"testifyhub/internal/handlers"
	"testifyhub/internal/middleware"
	"testifyhub/internal/render"
	"testifyhub/internal/router"
	"testifyhub/internal/session"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"ai_provider", cfg.AIProvider,
	)
	if cfg.AdminOpen() {
		slog.Warn("ADMIN_PASSWORD_HASH not set, admin area is open")
	}

	ctx := context.Background()

	// The catalog is compiled into the binary.
	store, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// Sessions and cached advice live in Valkey when configured, in process
	// memory otherwise.
	var (
		backend     session.Backend
		adviceCache advisor.Cache
	)
	if cfg.UseValkey() {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		backend = session.NewValkeyBackend(valkeyClient)
		adviceCache = cache.NewValkeyAdvice(valkeyClient, cfg.AICacheTTL)
	} else {
		slog.Warn("valkey not configured, sessions are kept in memory")
		backend = session.NewMemoryBackend()
		adviceCache = cache.NewMemoryAdvice(cfg.AICacheTTL)
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(backend, secureCookies)

	provider, err := ai.New(ctx, cfg.AIProvider, ai.ProviderConfig{
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		BaseURL: cfg.AIBaseURL,
		Timeout: cfg.AITimeout,
	})
	if err != nil {
		slog.Error("failed to initialize ai provider", "error", err)
		os.Exit(1)
	}
	slog.Info("ai provider initialized", "provider", provider.Name())

	adv := advisor.New(provider, adviceCache)
	// Jobs outlive the provider timeout slightly so a timed-out call still
	// records its fallback.
	jobs := advisor.NewJobs(cfg.AITimeout+5*time.Second, advisor.DefaultJobTTL)

	renderer, err := render.New(cfg.IsDev(), cfg.AdminOpen())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.AIRateLimit, time.Minute)
	defer limiter.Stop()

	r := router.New(sessionStore, renderer, limiter, router.Handlers{
		Marketplace: handlers.NewMarketplace(renderer, store, jobs),
		Advisory:    handlers.NewAdvisory(renderer, store, adv, jobs),
		Categories:  handlers.NewCategories(renderer, sessionStore, store),
		Auth:        handlers.NewAuth(renderer, sessionStore, cfg.AdminPasswordHash),
	}, router.Options{
		SecureCookies: secureCookies,
		AdminOpen:     cfg.AdminOpen(),
	})

	// AI calls run in background jobs, so requests never wait on the
	// provider and the write timeout can stay short.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight advisory jobs record their results before exiting.
	jobs.Wait()
	slog.Info("server stopped gracefully")
}
