// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/api"
	"github.com/starford/crmai/internal/copilot"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/mcpserver"
	"github.com/starford/crmai/internal/persist"
	"github.com/starford/crmai/internal/portal"
	"github.com/starford/crmai/internal/sse"
	"github.com/starford/crmai/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// Backend is an opened CRM: the storage provider and the store over it.
type Backend struct {
	Provider storage.Provider
	Adapter  *persist.Adapter
	Store    *crm.Store

	fs *storage.FS
}

// Close releases the storage provider.
func (b *Backend) Close() error {
	return b.Provider.Close()
}

// OpenStore opens the configured storage driver and loads the CRM from it.
// Unreadable data falls back to the defaults; only a storage that cannot
// be opened at all is an error.
func OpenStore(cfg *Config, logger *slog.Logger, opts ...crm.Option) (*Backend, error) {
	b := &Backend{}
	switch cfg.Storage.Driver {
	case DriverSQLite:
		if err := os.MkdirAll(cfg.Storage.Path, 0o700); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		db, err := storage.OpenSQLite(cfg.Storage.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		b.Provider = db
	default:
		fs, err := storage.NewFS(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		b.Provider, b.fs = fs, fs
	}

	b.Adapter = persist.New(b.Provider,
		persist.WithDemoSeed(cfg.Seed.Demo),
		persist.WithLogger(logger),
	)
	b.Store = crm.Open(b.Adapter, append([]crm.Option{crm.WithLogger(logger)}, opts...)...)
	return b, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	backend, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	store := backend.Store

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	store.SetChangeFunc(broker.PublishChange)

	aiClient := ai.NewClient(cfg.AI.ClientConfig(), ai.WithLogger(logger))
	cp := copilot.New(store, aiClient, copilot.WithLogger(logger))
	shares := portal.New(backend.Adapter, store,
		portal.WithLogger(logger),
		portal.WithBaseURL(cfg.Portal.BaseURL),
		portal.WithChangeFunc(broker.PublishChange),
	)

	h := api.NewHandler(store, cp, shares, aiClient, logger)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	})
	// Ready reports whether the last save reached storage.
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := store.SaveError(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"degraded"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if backend.fs != nil && cfg.Storage.Watch {
		g.Go(func() error {
			if err := shares.Watch(gCtx, backend.fs); err != nil {
				logger.Warn("portal watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		// Open event streams never go idle; end them before Shutdown waits.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the CRM over MCP on stdin/stdout. Logs go to stderr since
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	slog.SetDefault(logger)

	backend, err := OpenStore(app.config, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(backend.Store, app.version).ServeStdio()
}
