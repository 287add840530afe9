// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/links"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/publisher"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
)

// components holds the wired application pieces shared by all run modes.
type components struct {
	store storage.Provider
	site  storage.Provider
	db    *index.DB
	pub   *publisher.Publisher
}

// buildComponents wires storage, index, and publisher from the config.
// The caller owns db.Close.
func buildComponents(cfg *Config, logger *slog.Logger) (*components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Publish.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init vault storage: %w", err)
	}
	site, err := storage.NewFS(cfg.Publish.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init site storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	synth := frontmatter.New(cfg.Publish.Fields)
	renderer := &links.Renderer{Class: cfg.Publish.LinkClass, Resolver: db}
	pub := publisher.New(store, site, db, synth, renderer, cfg.Publish.Section, logger)
	if cfg.Publish.Workers > 0 {
		pub.SetWorkers(cfg.Publish.Workers)
	}

	return &components{store: store, site: site, db: db, pub: pub}, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func resolveConfig(opts []Option) (*Config, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app.config, nil
}

// RunPublish performs a one-shot publish of the whole vault and exits.
func RunPublish(ctx context.Context, opts ...Option) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	c, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	count, err := c.pub.PublishAll(ctx)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	logger.Info("Publish complete",
		slog.Int("pages", count),
		slog.String("output_dir", cfg.Publish.OutputDir))
	return nil
}

// RunMCP starts the MCP server on stdin/stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	// MCP speaks JSON-RPC over stdout, so the logger goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	c, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	if err := index.Sync(c.db, c.store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(c.store, c.db, c.pub)
	return srv.ServeStdio()
}

// Run starts the publishing daemon: it publishes the vault, then watches it
// for changes and serves the REST API until the context is cancelled or a
// shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("output_dir", cfg.Publish.OutputDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	// Initial full publish.
	count, err := c.pub.PublishAll(ctx)
	if err != nil {
		logger.Warn("initial publish failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Initial publish complete", slog.Int("pages", count))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	svc := api.NewService(c.store, c.db, c.pub)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Publish.OutputDir)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher; changed notes are republished and the SSE broker
	// is notified.
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, cfg.Vault.Path, c.pub, logger, func(kind, path string) {
			broker.PublishPageEvent(kind, path)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
