package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	core "github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/gorouter"
	"github.com/goliatone/go-aidash/pkg/blobstore"
	dashboardpkg "github.com/goliatone/go-aidash/pkg/dashboard"
	"github.com/goliatone/go-aidash/pkg/gateway"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr       string `default:":8080" env:"AIDASH_ADDR" help:"Listen address."`
	BackendURL string `default:"http://127.0.0.1:8000" env:"AIDASH_BACKEND_URL" help:"AI/SQL backend base URL."`
	NoProbe    bool   `name:"no-probe" env:"AIDASH_NO_PROBE" help:"Skip the backend check and serve substitute data."`
	Store      string `default:"file" enum:"memory,file,sqlite,firestore" env:"AIDASH_STORE" help:"Where the widget grid is persisted (${enum})."`
	StoreDSN   string `name:"store-dsn" default:".aidash" env:"AIDASH_STORE_DSN" help:"Directory (file), database path (sqlite) or project id (firestore)."`
	Collection string `default:"dashboard_state" env:"AIDASH_FIRESTORE_COLLECTION" help:"Firestore collection."`
	StorageKey string `default:"dashboard-widgets" env:"AIDASH_STORAGE_KEY" help:"Key the widget grid is stored under."`
	BasePath   string `default:"/dashboard" env:"AIDASH_BASE_PATH" help:"URL prefix for the page and API."`
	Transport  string `default:"fiber" enum:"fiber,http" env:"AIDASH_TRANSPORT" help:"HTTP stack (${enum})."`
	Seed       bool   `env:"AIDASH_SEED" help:"Place the starter widgets when the grid is empty."`

	ChartCacheTTL time.Duration `name:"chart-cache-ttl" default:"5m" env:"AIDASH_CHART_CACHE_TTL" help:"How long rendered charts are reused (negative disables)."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openStore(ctx, cmd.Store, cmd.StoreDSN, cmd.Collection)
	if err != nil {
		return err
	}
	defer closeStore()

	dash, err := dashboardpkg.New(ctx, dashboardpkg.Config{
		Store:      store,
		StorageKey: cmd.StorageKey,
		BackendURL: cmd.BackendURL,
		Probe:      !cmd.NoProbe,
		BasePath:   cmd.BasePath,
		Logger:     logger,

		ChartCacheTTL: cmd.ChartCacheTTL,
	})
	if err != nil {
		return err
	}
	defer dash.Close()
	if dash.Mode == gateway.ModeFallback {
		logger.Warn("backend unavailable, serving substitute data", zap.String("backend_url", cmd.BackendURL))
	}
	if cmd.Seed {
		if err := dash.Seed(ctx); err != nil {
			return fmt.Errorf("seed dashboard: %w", err)
		}
	}

	logger.Info("dashboard listening",
		zap.String("addr", cmd.Addr),
		zap.String("path", dash.BasePath+"/"),
		zap.String("transport", cmd.Transport),
		zap.String("store", cmd.Store),
	)
	if cmd.Transport == "http" {
		return serveHTTP(ctx, cmd.Addr, newHTTPHandler(dash), logger)
	}
	return cmd.serveFiber(ctx, dash, logger)
}

func (cmd *serveCmd) serveFiber(ctx context.Context, dash *dashboardpkg.Dashboard, logger *zap.Logger) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: dash.Controller,
		API:        dash.Executor,
		Broadcast:  dash.Hook,
		BasePath:   dash.BasePath,
	}); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(cmd.Addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newHTTPHandler mounts the page and the API on a chi router.
func newHTTPHandler(dash *dashboardpkg.Dashboard) http.Handler {
	r := chi.NewRouter()
	r.Get(dash.BasePath+"/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := dash.Controller.RenderTemplate(req.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	r.Mount(dash.BasePath+"/api", dash.Handlers().Routes(dash.Hook))
	return r
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the blob store named by kind; the returned func releases it.
func openStore(ctx context.Context, kind, dsn, collection string) (core.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case "memory":
		return blobstore.NewMemory(), noop, nil
	case "file":
		store, err := blobstore.NewFile(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case "sqlite":
		store, err := blobstore.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "firestore":
		store, err := blobstore.OpenFirestore(ctx, dsn, collection)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}
