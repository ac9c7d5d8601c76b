package main

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

	"go-page-builder/internal/config"
	"go-page-builder/internal/datasource"
	"go-page-builder/internal/interpolate"
	"go-page-builder/internal/pagemanager"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"

	"github.com/spf13/pflag"
)

// application holds the application-wide dependencies for the server.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Store
	pages    *pagemanager.PageManager
	sources  *datasource.Registry
	engine   *templating.Engine
	sessions *sessionCache
}

// newApplication wires storage, managers and the renderer from cfg.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage at %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	logger.Info("Using storage", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	pages := pagemanager.NewManager(store, logger)

	registry := datasource.NewRegistry(store, datasource.NewHTTPFetcher(cfg.DataSources.RefreshTimeout, logger), logger)
	registry.Concurrency = cfg.DataSources.RefreshConcurrency
	if err := registry.Load(); err != nil {
		store.Close()
		return nil, fmt.Errorf("loading data sources: %w", err)
	}
	if cfg.DataSources.Seed != "" {
		seed, err := datasource.LoadSeedFile(cfg.DataSources.Seed)
		if err != nil {
			store.Close()
			return nil, err
		}
		added, err := registry.Import(seed)
		if err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("Imported seed data sources", "file", cfg.DataSources.Seed, "added", added)
	}

	resolver := interpolate.NewResolver(cfg.Interpolate.CacheSize, logger)
	engine := templating.NewEngine(resolver, logger)
	if cfg.Render.Layouts != "" {
		if err := engine.LoadLayouts(cfg.Render.Layouts); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pages:    pages,
		sources:  registry,
		engine:   engine,
		sessions: newSessionCache(pages, logger, defaultSessionCacheSize),
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (default ./pagebuilder.yaml when present)")
	fs.String("addr", "", "Listen address")
	fs.Bool("csrf", false, "Enable CSRF protection")
	fs.String("storage-driver", "", "Storage driver: json or sqlite")
	fs.String("storage-path", "", "Storage directory (json) or database file (sqlite)")
	fs.String("seed", "", "YAML file of data sources to import at start")
	fs.String("log-level", "", "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := config.New()
	if err := config.BindFlags(v, fs, map[string]string{
		"server.addr":      "addr",
		"server.csrf":      "csrf",
		"storage.driver":   "storage-driver",
		"storage.path":     "storage-path",
		"datasources.seed": "seed",
		"log.level":        "log-level",
	}); err != nil {
		return err
	}
	cfg, err := config.Load(v, *configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer app.store.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", cfg.Server.Addr, "csrf", cfg.Server.CSRF)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	app.sessions.closeAll()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
