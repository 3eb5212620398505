package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-aidash/components/dashboard"
)

// DefaultBaseURL is where the reference backend listens by default.
const DefaultBaseURL = "http://127.0.0.1:8000"

// fallbackPromptSQL answers every prompt while in fallback mode.
const fallbackPromptSQL = "SELECT Department, ROUND(AVG(EfficiencyPercent),2) AS AvgEfficiency FROM GarmentPerformance GROUP BY Department ORDER BY AvgEfficiency DESC"

// Mode tells whether requests go to the backend or to substitute data.
type Mode string

const (
	ModeFallback Mode = "fallback"
	ModeLive     Mode = "live"
)

// Config configures the gateway. Zero values pick sensible defaults.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Datasets   *Datasets
	Rand       func() float64
	Telemetry  dashboard.Telemetry
	Logger     *zap.Logger
}

// Gateway talks to the AI/SQL backend and degrades to substitute data.
// It starts in fallback mode; Probe may switch it live, and any failed query
// switches it back for good.
type Gateway struct {
	baseURL   string
	client    *http.Client
	datasets  *Datasets
	random    func() float64
	telemetry dashboard.Telemetry
	logger    *zap.Logger

	mu   sync.RWMutex
	mode Mode
}

var _ dashboard.Gateway = (*Gateway)(nil)

// New builds a gateway in fallback mode.
func New(cfg Config) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    cfg.HTTPClient,
		datasets:  cfg.Datasets,
		random:    cfg.Rand,
		telemetry: cfg.Telemetry,
		logger:    cfg.Logger,
		mode:      ModeFallback,
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if g.client == nil {
		g.client = http.DefaultClient
	}
	if g.datasets == nil {
		g.datasets = DefaultDatasets()
	}
	if g.random == nil {
		g.random = rand.Float64
	}
	if g.telemetry == nil {
		g.telemetry = noopTelemetry{}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Mode reports the current mode.
func (g *Gateway) Mode() Mode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mode
}

// Reset puts the gateway back in fallback mode.
func (g *Gateway) Reset() {
	g.setMode(ModeFallback)
}

func (g *Gateway) setMode(mode Mode) {
	g.mu.Lock()
	prev := g.mode
	g.mode = mode
	g.mu.Unlock()
	if prev != mode {
		g.logger.Info("gateway mode changed", zap.String("from", string(prev)), zap.String("to", string(mode)))
	}
}

// Probe checks backend liveness with GET /; a 2xx answer switches to live mode.
func (g *Gateway) Probe(ctx context.Context) Mode {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/", nil)
	if err != nil {
		g.logger.Warn("backend probe failed", zap.Error(err))
		return g.Mode()
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("backend not reachable, using substitute data", zap.String("base_url", g.baseURL), zap.Error(err))
		return g.Mode()
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		g.setMode(ModeLive)
	}
	return g.Mode()
}

// GenerateFromPrompt turns a prompt into a widget answer. Failures in live
// mode are logged and yield nil without changing the mode.
func (g *Gateway) GenerateFromPrompt(ctx context.Context, prompt string) (*dashboard.GeneratedWidget, error) {
	if g.Mode() == ModeFallback {
		res := g.datasets.Substitute(fallbackPromptSQL, g.random)
		return &dashboard.GeneratedWidget{
			SQL:       fallbackPromptSQL,
			ChartType: dashboard.ChartBar,
			Title:     "Mock response for: \"" + prompt + "\"",
			Data:      res.Data,
			Columns:   res.Columns,
		}, nil
	}

	var resp askResponse
	if err := g.do(ctx, "/ask-ai", askRequest{Question: prompt}, &resp); err != nil {
		g.logger.Warn("failed to get AI response", zap.String("prompt", prompt), zap.Error(err))
		g.telemetry.Record(ctx, "gateway.generate.failed", map[string]any{"error": err.Error()})
		return nil, nil
	}
	rows, columns, err := decodeRows(resp.Results)
	if err != nil {
		g.logger.Warn("malformed AI response", zap.String("prompt", prompt), zap.Error(err))
		g.telemetry.Record(ctx, "gateway.generate.failed", map[string]any{"error": err.Error()})
		return nil, nil
	}
	return &dashboard.GeneratedWidget{
		SQL:       resp.SQL,
		ChartType: dashboard.ChartType(resp.ChartType),
		Title:     resp.Title,
		Data:      rows,
		Columns:   columns,
	}, nil
}

// ExecuteQuery always returns a result. A failed live request latches the
// gateway into fallback mode and returns substitute data carrying
// dashboard.FallbackWarning.
func (g *Gateway) ExecuteQuery(ctx context.Context, sql string, dateRange *dashboard.DateRange) dashboard.QueryResult {
	if g.Mode() == ModeFallback {
		return g.datasets.Substitute(sql, g.random)
	}

	var resp executeResponse
	err := g.do(ctx, "/execute-sql", executeRequest{Query: sql, DateRange: dateRange}, &resp)
	var (
		rows    []dashboard.Row
		columns []string
	)
	if err == nil {
		rows, columns, err = decodeRows(resp.Data)
	}
	if err != nil {
		g.setMode(ModeFallback)
		g.logger.Warn("failed to execute query, falling back to substitute data", zap.String("sql", sql), zap.Error(err))
		g.telemetry.Record(ctx, "gateway.execute.fallback", map[string]any{"error": err.Error()})
		res := g.datasets.Substitute(sql, g.random)
		res.Warning = dashboard.FallbackWarning
		return res
	}
	if len(rows) == 0 {
		g.logger.Warn("query returned no data", zap.String("sql", sql))
		return dashboard.QueryResult{Data: []dashboard.Row{}, Columns: []string{}}
	}
	if len(resp.Columns) > 0 {
		columns = resp.Columns
	}
	return dashboard.QueryResult{Data: rows, Columns: columns}
}

// FetchPredefinedWidgetData runs a template's query and joins it with the template.
func (g *Gateway) FetchPredefinedWidgetData(ctx context.Context, tpl dashboard.PredefinedWidget, dateRange *dashboard.DateRange) *dashboard.FetchedWidgetData {
	res := g.ExecuteQuery(ctx, tpl.SQL, dateRange)
	return &dashboard.FetchedWidgetData{
		Title:     tpl.Title,
		ChartType: tpl.ChartType,
		SQL:       tpl.SQL,
		Data:      res.Data,
		Columns:   res.Columns,
		Warning:   res.Warning,
	}
}

func (g *Gateway) do(ctx context.Context, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	SQL       string            `json:"sql"`
	ChartType string            `json:"chart_type"`
	Title     string            `json:"title"`
	Results   []json.RawMessage `json:"results"`
}

type executeRequest struct {
	Query     string               `json:"query"`
	DateRange *dashboard.DateRange `json:"date_range,omitempty"`
}

type executeResponse struct {
	Data    []json.RawMessage `json:"data"`
	Columns []string          `json:"columns"`
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}
