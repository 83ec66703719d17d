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
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mannaz/internal/api"
	"github.com/starford/mannaz/internal/artifact"
	"github.com/starford/mannaz/internal/audit"
	"github.com/starford/mannaz/internal/extract"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/ledger"
	"github.com/starford/mannaz/internal/matchsvc"
	"github.com/starford/mannaz/internal/mcpserver"
	"github.com/starford/mannaz/internal/skills"
	"github.com/starford/mannaz/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("upload_dir", cfg.Storage.UploadDir),
		slog.String("index_path", cfg.Storage.IndexPath),
		slog.String("dataset_path", cfg.Dataset.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure artifact folders exist.
	for _, dir := range []string{cfg.Storage.ResumeDir(), cfg.Storage.JDDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}

	// Initialize SQLite artifact index.
	db, err := index.Open(cfg.Storage.IndexPath)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Artifact stores; New reconciles the index with the folder contents.
	resumes, err := artifact.New(cfg.Storage.ResumeDir(), "resumes", db)
	if err != nil {
		return fmt.Errorf("init resume store: %w", err)
	}
	jds, err := artifact.New(cfg.Storage.JDDir(), "job_descriptions", db)
	if err != nil {
		return fmt.Errorf("init job-description store: %w", err)
	}

	// Skill dictionary: built-in unless a custom one is configured.
	dict := skills.DefaultDictionary()
	if cfg.Matching.DictionaryPath != "" {
		dict, err = skills.LoadDictionary(cfg.Matching.DictionaryPath)
		if err != nil {
			return fmt.Errorf("load skill dictionary: %w", err)
		}
	}

	svc := matchsvc.NewService(
		resumes, jds,
		ledger.NewCSV(cfg.Dataset.Path),
		extract.NewFileExtractor(),
		skills.NewExtractor(dict),
		matchsvc.LexicalScorer{},
		audit.NewLog(cfg.Dataset.AuditLog),
	)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.App.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

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

	// Legacy top-level routes kept for pre-/api clients.
	h := api.NewHandler(svc, broker)
	auth := api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)
	r.With(auth).Post("/process", h.Process)
	r.With(auth).Get("/dataset", h.Dataset)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch both artifact folders so files dropped in externally get
	// indexed and deduplicated like uploads.
	g.Go(func() error {
		return resumes.Watch(gCtx, logger)
	})
	g.Go(func() error {
		return jds.Watch(gCtx, logger)
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
