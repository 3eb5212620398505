package dashboard

import (
	"context"
	"errors"
)

// ChartType tags how a widget's rows are drawn.
type ChartType string

const (
	ChartCard          ChartType = "card"
	ChartBar           ChartType = "bar"
	ChartHorizontalBar ChartType = "horizontalBar"
	ChartLine          ChartType = "line"
	ChartPie           ChartType = "pie"
	ChartDonut         ChartType = "donut"
	ChartArea          ChartType = "area"
	ChartStackedBar    ChartType = "stackedBar"
	ChartRadar         ChartType = "radar"
	ChartFunnel        ChartType = "funnel"
	ChartRadialBar     ChartType = "radialBar"
)

// DefaultStorageKey is the blob key the widget collection is persisted under.
const DefaultStorageKey = "dashboard-widgets"

// FallbackWarning tells the user a query failed and substitute rows were used.
const FallbackWarning = "Failed to execute SQL query. Falling back to mock data."

var (
	// ErrBlobNotFound is returned by BlobStore implementations when a key has never been written.
	ErrBlobNotFound = errors.New("dashboard: blob not found")
	// ErrBlankPrompt rejects empty or whitespace-only prompts before they reach the gateway.
	ErrBlankPrompt = errors.New("dashboard: prompt is required")
	// ErrUnknownChartType is returned when a chart type is outside the catalog.
	ErrUnknownChartType = errors.New("dashboard: unknown chart type")
	// ErrTemplateNotFound is returned when a library template id does not exist.
	ErrTemplateNotFound = errors.New("dashboard: library template not found")
	// ErrInvalidLayout is returned when layout settings fail validation.
	ErrInvalidLayout = errors.New("dashboard: invalid layout settings")
	// ErrDuplicateWidget rejects a widget whose id is already placed.
	ErrDuplicateWidget = errors.New("dashboard: widget id already exists")
)

// Row is one record of a query result keyed by column name.
type Row map[string]any

// WidgetConfig is a placed widget: identity, chart type, query provenance, a data
// snapshot and its span on the grid. JSON tags match the persisted blob format.
type WidgetConfig struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ChartType ChartType `json:"chartType"`
	SQL       string    `json:"sql"`
	Data      []Row     `json:"data"`
	Columns   []string  `json:"columns"`
	ColSpan   int       `json:"colSpan"`
	RowSpan   int       `json:"rowSpan"`
}

// Span is the width/height a widget occupies in grid units.
type Span struct {
	ColSpan int `json:"colSpan"`
	RowSpan int `json:"rowSpan"`
}

// Span returns the widget's current span.
func (w WidgetConfig) Span() Span {
	return Span{ColSpan: w.ColSpan, RowSpan: w.RowSpan}
}

// QueryResult is the tabular answer to a query.
type QueryResult struct {
	Data    []Row    `json:"data"`
	Columns []string `json:"columns"`
	// Warning is set when the backend failed and Data is substitute data.
	Warning string `json:"warning,omitempty"`
}

// DateRange optionally narrows predefined queries.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// PredefinedWidget is a read-only library template.
type PredefinedWidget struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	ChartType ChartType `json:"chart_type" yaml:"chart_type"`
	SQL       string    `json:"sql" yaml:"sql"`
	Icon      string    `json:"icon" yaml:"icon"`
}

// FetchedWidgetData is a template joined with the rows its query produced.
type FetchedWidgetData struct {
	Title     string    `json:"title"`
	ChartType ChartType `json:"chartType"`
	SQL       string    `json:"sql"`
	Data      []Row     `json:"data"`
	Columns   []string  `json:"columns"`
	Warning   string    `json:"warning,omitempty"`
}

// PlacedWidget is a widget just added from the library, with the warning to
// show when its rows are substitute data.
type PlacedWidget struct {
	WidgetConfig
	Warning string `json:"warning,omitempty"`
}

// GeneratedWidget is the answer to a natural-language prompt.
type GeneratedWidget struct {
	SQL       string    `json:"sql"`
	ChartType ChartType `json:"chart_type"`
	Title     string    `json:"title"`
	Data      []Row     `json:"data"`
	Columns   []string  `json:"columns"`
}

// BlobStore persists a whole serialized value under a key.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Gateway resolves prompts and templates into widget data.
type Gateway interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (*GeneratedWidget, error)
	FetchPredefinedWidgetData(ctx context.Context, template PredefinedWidget, dateRange *DateRange) *FetchedWidgetData
}

// RefreshHook notifies transports (REST/WebSocket/SSE) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// Event reasons emitted by the grid.
const (
	ReasonAdded            = "added"
	ReasonDeleted          = "deleted"
	ReasonChartTypeChanged = "chart_type_changed"
	ReasonLayoutSaved      = "layout_saved"
	ReasonReordered        = "reordered"
)

// WidgetEvent describes a committed change to the widget collection.
type WidgetEvent struct {
	Reason   string        `json:"reason"`
	WidgetID string        `json:"widget_id"`
	Widget   *WidgetConfig `json:"widget,omitempty"`
	Order    []string      `json:"order,omitempty"`
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error { return nil }

func cloneWidget(w WidgetConfig) WidgetConfig {
	out := w
	if w.Columns != nil {
		out.Columns = append(make([]string, 0, len(w.Columns)), w.Columns...)
	}
	out.Data = cloneRows(w.Data)
	return out
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
