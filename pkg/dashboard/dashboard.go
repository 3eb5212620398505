package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	core "github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/commands"
	"github.com/goliatone/go-aidash/components/dashboard/httpapi"
	"github.com/goliatone/go-aidash/components/dashboard/queries"
	"github.com/goliatone/go-aidash/pkg/gateway"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

const (
	// DefaultBasePath is where the page is served when Config.BasePath is empty.
	DefaultBasePath = "/dashboard"
	// DefaultChartCacheTTL bounds how long rendered chart markup is reused.
	DefaultChartCacheTTL = 5 * time.Minute
)

// Config assembles a complete dashboard.
type Config struct {
	Store      core.BlobStore
	StorageKey string
	BackendURL string
	HTTPClient *http.Client
	// Probe checks the backend once at startup; without it the gateway
	// serves substitute data only.
	Probe    bool
	BasePath string
	Title    string
	Renderer core.Renderer
	Logger   *zap.Logger
	// ChartCacheTTL defaults to DefaultChartCacheTTL; a negative value
	// disables the render cache.
	ChartCacheTTL time.Duration
}

// Dashboard holds every wired component of one dashboard instance.
type Dashboard struct {
	Service    *core.Service
	Grid       *core.Grid
	Gateway    *gateway.Gateway
	Hook       *core.BroadcastHook
	Controller *core.Controller
	ChartCache *core.ChartCache
	Executor   httpapi.CommandExecutor
	Telemetry  core.Telemetry
	Mode       gateway.Mode
	BasePath   string
}

// New loads the persisted grid, probes the backend when asked and wires the
// service, controller and command executor.
func New(ctx context.Context, cfg Config) (*Dashboard, error) {
	if cfg.Store == nil {
		return nil, errors.New("dashboard: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = DefaultBasePath
	}
	telemetry := core.NewZapTelemetry(logger)
	hook := core.NewBroadcastHook()

	grid := core.NewGrid(core.GridOptions{
		Store:       cfg.Store,
		Key:         cfg.StorageKey,
		RefreshHook: hook,
		Telemetry:   telemetry,
		Logger:      logger,
	})
	if err := grid.Load(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: load widgets: %w", err)
	}

	gw := gateway.New(gateway.Config{
		BaseURL:    cfg.BackendURL,
		HTTPClient: cfg.HTTPClient,
		Telemetry:  telemetry,
		Logger:     logger.Named("gateway"),
	})
	mode := gw.Mode()
	if cfg.Probe {
		probe := commands.NewProbeBackendCommand(gw, telemetry)
		if err := probe.Execute(ctx, commands.ProbeBackendInput{Mode: &mode}); err != nil {
			return nil, err
		}
	}

	var (
		cache       *core.ChartCache
		dispatchOpt []core.DispatcherOption
	)
	ttl := cfg.ChartCacheTTL
	if ttl == 0 {
		ttl = DefaultChartCacheTTL
	}
	if ttl > 0 {
		cache = core.NewChartCache(ttl)
		dispatchOpt = append(dispatchOpt, core.WithRenderCache(cache))
	}

	service := core.NewService(core.Options{
		Grid:       grid,
		Gateway:    gw,
		Dispatcher: core.NewDispatcher(dispatchOpt...),
		Telemetry:  telemetry,
		Logger:     logger,
	})

	renderer := cfg.Renderer
	if renderer == nil {
		r, err := core.NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("dashboard: template renderer: %w", err)
		}
		renderer = r
	}
	controller := core.NewController(core.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Title:    cfg.Title,
		APIBase:  base + "/api",
	})

	return &Dashboard{
		Service:    service,
		Grid:       grid,
		Gateway:    gw,
		Hook:       hook,
		Controller: controller,
		ChartCache: cache,
		Executor:   httpapi.NewCommandExecutor(httpapi.Services{Dashboard: service, Telemetry: telemetry}),
		Telemetry:  telemetry,
		Mode:       mode,
		BasePath:   base,
	}, nil
}

// Seed places the given library templates, or the defaults, on an empty grid.
func (d *Dashboard) Seed(ctx context.Context, templateIDs ...string) error {
	return commands.NewSeedDashboardCommand(d.Service, d.Telemetry).
		Execute(ctx, commands.SeedDashboardInput{TemplateIDs: templateIDs})
}

// Handlers returns the net/http API bound to this dashboard.
func (d *Dashboard) Handlers() httpapi.Handlers {
	return httpapi.Handlers{
		Executor: d.Executor,
		Widgets:  queries.NewWidgetsQuery(d.Service),
		Layout:   queries.NewLayoutQuery(d.Service),
		Library:  queries.NewLibraryQuery(d.Service),
	}
}

// Close disconnects live-update subscribers.
func (d *Dashboard) Close() {
	d.Hook.Close()
}
