// Package main is the entry point for the newsdesk API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/database"
	"newsdesk/internal/handlers"
	"newsdesk/internal/resolver"
	"newsdesk/internal/router"
	"newsdesk/internal/session"
	"newsdesk/internal/storage"
	"newsdesk/internal/store"
	"newsdesk/internal/taxonomy"
)

func main() {
	// Structured logger.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + resolution cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	articleStore := store.NewArticleStore(db)
	mediaStore := store.NewMediaStore(db)

	// The taxonomy service owns the category tree invariants; the
	// resolver turns URL paths into articles or category listings.
	taxonomyService := taxonomy.NewService(categoryStore)
	pathResolver := resolver.New(articleStore, taxonomyService)

	// Resolution cache (Valkey-backed, generation-invalidated).
	resolveCache := cache.NewResolveCache(valkeyClient, cache.DefaultResolveTTL)

	// Connect to S3-compatible object storage (optional — the API works
	// without it, with media uploads disabled).
	var storageClient *storage.Client
	if cfg.HasS3() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	categoryHandlers := handlers.NewCategories(taxonomyService, articleStore, resolveCache)
	articleHandlers := handlers.NewArticles(articleStore, taxonomyService, resolveCache)
	resolveHandlers := handlers.NewResolve(pathResolver, resolveCache)
	mediaHandlers := handlers.NewMedia(mediaStore, storageClient)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Auth:          authHandlers,
		Categories:    categoryHandlers,
		Articles:      articleHandlers,
		Resolve:       resolveHandlers,
		Media:         mediaHandlers,
		SecureCookies: secureCookies,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// media uploads with variant generation.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
