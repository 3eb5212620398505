package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errMissingGrid    = errors.New("dashboard: widget grid not configured")
	errMissingGateway = errors.New("dashboard: gateway not configured")
)

// WidgetCollection is the ordered, persisted widget list the service mutates.
type WidgetCollection interface {
	Widgets() []WidgetConfig
	Widget(id string) (WidgetConfig, bool)
	Add(ctx context.Context, widget WidgetConfig) error
	Delete(ctx context.Context, id string) error
	UpdateChartType(ctx context.Context, id string, chartType ChartType) error
	SaveLayout(ctx context.Context, id string, span Span) error
	Reorder(ctx context.Context, draggedID, targetID string) error
	ApplyOrder(ctx context.Context, ids []string) error
}

// Options configures the dashboard Service. Collaborators are interfaces so
// applications can swap storage or the backend gateway.
type Options struct {
	Grid        WidgetCollection
	Gateway     Gateway
	Library     *Library
	Dispatcher  *Dispatcher
	Validator   LayoutValidator
	Telemetry   Telemetry
	Logger      *zap.Logger
	IDGenerator func() string
}

// Service turns user intent (prompts, library picks, edits) into grid mutations.
type Service struct {
	opts Options
	drag *DragTracker
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Library == nil {
		opts.Library = DefaultLibrary()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher()
	}
	if opts.Validator == nil {
		opts.Validator = NewSchemaValidator()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = newWidgetID
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	s := &Service{opts: opts}
	s.drag = NewDragTracker(reorderFunc(s.ReorderWidgets))
	return s
}

func newWidgetID() string {
	return "widget-" + uuid.NewString()
}

// CreateFromPrompt asks the gateway to answer a natural-language prompt and
// appends the resulting widget. A nil widget with a nil error means the
// gateway could not produce an answer.
func (s *Service) CreateFromPrompt(ctx context.Context, prompt string) (*WidgetConfig, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrBlankPrompt
	}
	grid, err := s.grid()
	if err != nil {
		return nil, err
	}
	if s.opts.Gateway == nil {
		return nil, errMissingGateway
	}
	generated, err := s.opts.Gateway.GenerateFromPrompt(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if generated == nil {
		s.opts.Logger.Warn("prompt produced no widget", zap.String("prompt", prompt))
		return nil, nil
	}
	widget := s.newWidget(generated.Title, generated.ChartType, generated.SQL, generated.Data, generated.Columns)
	if err := grid.Add(ctx, widget); err != nil {
		return nil, err
	}
	s.opts.Telemetry.Record(ctx, "dashboard.widget.generated", map[string]any{
		"widget_id":  widget.ID,
		"chart_type": string(widget.ChartType),
	})
	return &widget, nil
}

// AddFromLibrary instantiates a predefined template with freshly fetched data.
// The returned warning is set when the rows are substitute data.
func (s *Service) AddFromLibrary(ctx context.Context, templateID string, dateRange *DateRange) (*PlacedWidget, error) {
	grid, err := s.grid()
	if err != nil {
		return nil, err
	}
	if s.opts.Gateway == nil {
		return nil, errMissingGateway
	}
	tpl, ok := s.opts.Library.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	fetched := s.opts.Gateway.FetchPredefinedWidgetData(ctx, tpl, dateRange)
	if fetched == nil {
		s.opts.Logger.Warn("library template produced no data", zap.String("template_id", templateID))
		return nil, nil
	}
	widget := s.newWidget(fetched.Title, fetched.ChartType, fetched.SQL, fetched.Data, fetched.Columns)
	if err := grid.Add(ctx, widget); err != nil {
		return nil, err
	}
	s.opts.Telemetry.Record(ctx, "dashboard.widget.library_added", map[string]any{
		"widget_id":   widget.ID,
		"template_id": templateID,
		"fallback":    fetched.Warning != "",
	})
	return &PlacedWidget{WidgetConfig: widget, Warning: fetched.Warning}, nil
}

func (s *Service) newWidget(title string, chartType ChartType, sql string, data []Row, columns []string) WidgetConfig {
	span := DefaultSpan(chartType)
	if data == nil {
		data = []Row{}
	}
	if columns == nil {
		columns = []string{}
	}
	return WidgetConfig{
		ID:        s.opts.IDGenerator(),
		Title:     title,
		ChartType: chartType,
		SQL:       sql,
		Data:      data,
		Columns:   columns,
		ColSpan:   span.ColSpan,
		RowSpan:   span.RowSpan,
	}
}

// DeleteWidget removes a widget; unknown ids are ignored.
func (s *Service) DeleteWidget(ctx context.Context, id string) error {
	grid, err := s.grid()
	if err != nil {
		return err
	}
	return grid.Delete(ctx, id)
}

// UpdateChartType switches how a widget is drawn.
func (s *Service) UpdateChartType(ctx context.Context, id string, chartType ChartType) error {
	grid, err := s.grid()
	if err != nil {
		return err
	}
	if !chartType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChartType, chartType)
	}
	return grid.UpdateChartType(ctx, id, chartType)
}

// SaveLayout validates and stores a widget's span.
func (s *Service) SaveLayout(ctx context.Context, id string, span Span) error {
	grid, err := s.grid()
	if err != nil {
		return err
	}
	if err := s.opts.Validator.ValidateLayout(span); err != nil {
		return err
	}
	return grid.SaveLayout(ctx, id, span)
}

// ReorderWidgets moves draggedID into targetID's position.
func (s *Service) ReorderWidgets(ctx context.Context, draggedID, targetID string) error {
	grid, err := s.grid()
	if err != nil {
		return err
	}
	return grid.Reorder(ctx, draggedID, targetID)
}

// ApplyOrder rewrites the whole order in one step.
func (s *Service) ApplyOrder(ctx context.Context, ids []string) error {
	grid, err := s.grid()
	if err != nil {
		return err
	}
	return grid.ApplyOrder(ctx, ids)
}

// Widgets lists the placed widgets in render order.
func (s *Service) Widgets(context.Context) ([]WidgetConfig, error) {
	grid, err := s.grid()
	if err != nil {
		return nil, err
	}
	return grid.Widgets(), nil
}

// Library lists the predefined templates.
func (s *Service) Library(context.Context) ([]PredefinedWidget, error) {
	return s.opts.Library.Templates(), nil
}

// ChartTypes lists the chart type override menu.
func (s *Service) ChartTypes(context.Context) ([]ChartTypeOption, error) {
	return ChartTypes(), nil
}

// Drag exposes the gesture tracker that feeds ReorderWidgets.
func (s *Service) Drag() *DragTracker {
	return s.drag
}

// RenderedWidget pairs a widget with its visual and display span.
type RenderedWidget struct {
	Widget     WidgetConfig `json:"widget"`
	Span       Span         `json:"span"`
	ChartLabel string       `json:"chart_label"`
	Visual     Visual       `json:"visual"`
}

// RenderWidgets draws every widget in order. A widget whose chart fails to
// render gets the unknown-chart placeholder so one bad widget never blanks the page.
func (s *Service) RenderWidgets(ctx context.Context) ([]RenderedWidget, error) {
	widgets, err := s.Widgets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RenderedWidget, len(widgets))
	for i, w := range widgets {
		visual, err := s.opts.Dispatcher.Render(w.ChartType, w.Data, w.Columns)
		if err != nil {
			s.opts.Logger.Error("render widget", zap.String("widget_id", w.ID), zap.Error(err))
			visual = Visual{Kind: VisualUnknown, ChartType: w.ChartType, Text: UnknownChartText}
		}
		out[i] = RenderedWidget{
			Widget:     w,
			Span:       clampSpan(w.Span()),
			ChartLabel: w.ChartType.Label(),
			Visual:     visual,
		}
	}
	return out, nil
}

func (s *Service) grid() (WidgetCollection, error) {
	if s.opts.Grid == nil {
		return nil, errMissingGrid
	}
	return s.opts.Grid, nil
}

type reorderFunc func(ctx context.Context, draggedID, targetID string) error

func (f reorderFunc) Reorder(ctx context.Context, draggedID, targetID string) error {
	return f(ctx, draggedID, targetID)
}
