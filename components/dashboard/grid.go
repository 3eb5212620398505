package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

var errMissingBlobStore = errors.New("dashboard: blob store not configured")

// GridOptions configures the Grid. Store is required; everything else has defaults.
type GridOptions struct {
	Store       BlobStore
	Key         string
	RefreshHook RefreshHook
	Validator   WidgetsValidator
	Telemetry   Telemetry
	Logger      *zap.Logger
}

// Grid owns the ordered widget collection and persists it as one blob after
// every committed mutation.
type Grid struct {
	opts    GridOptions
	mu      sync.RWMutex
	widgets []WidgetConfig
}

// NewGrid builds an empty grid; call Load to read the persisted collection.
func NewGrid(opts GridOptions) *Grid {
	if opts.Key == "" {
		opts.Key = DefaultStorageKey
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Validator == nil {
		opts.Validator = NewSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &Grid{opts: opts, widgets: []WidgetConfig{}}
}

// Load replaces the in-memory collection with the persisted one. A missing or
// unreadable blob yields an empty collection; only store failures are returned.
func (g *Grid) Load(ctx context.Context) error {
	if g.opts.Store == nil {
		return errMissingBlobStore
	}
	raw, err := g.opts.Store.Load(ctx, g.opts.Key)
	if errors.Is(err, ErrBlobNotFound) {
		g.replace([]WidgetConfig{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("dashboard: load widgets: %w", err)
	}
	widgets, err := g.decode(raw)
	if err != nil {
		g.opts.Logger.Warn("discarding unreadable widget state",
			zap.String("key", g.opts.Key),
			zap.Error(err),
		)
		g.replace([]WidgetConfig{})
		return nil
	}
	g.replace(widgets)
	g.opts.Logger.Debug("widgets loaded", zap.String("key", g.opts.Key), zap.Int("count", len(widgets)))
	return nil
}

func (g *Grid) decode(raw []byte) ([]WidgetConfig, error) {
	if len(raw) == 0 {
		return []WidgetConfig{}, nil
	}
	if err := g.opts.Validator.ValidateWidgets(raw); err != nil {
		return nil, err
	}
	var widgets []WidgetConfig
	if err := json.Unmarshal(raw, &widgets); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWidget, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	if widgets == nil {
		widgets = []WidgetConfig{}
	}
	return widgets, nil
}

func (g *Grid) replace(widgets []WidgetConfig) {
	g.mu.Lock()
	g.widgets = widgets
	g.mu.Unlock()
}

// Widgets returns a copy of the collection in render order.
func (g *Grid) Widgets() []WidgetConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]WidgetConfig, len(g.widgets))
	for i, w := range g.widgets {
		out[i] = cloneWidget(w)
	}
	return out
}

// Widget looks up a widget by id.
func (g *Grid) Widget(id string) (WidgetConfig, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx := indexOf(g.widgets, id)
	if idx == -1 {
		return WidgetConfig{}, false
	}
	return cloneWidget(g.widgets[idx]), true
}

// Add appends the widget to the end of the collection.
func (g *Grid) Add(ctx context.Context, widget WidgetConfig) error {
	widget = cloneWidget(widget)
	return g.mutate(ctx, ReasonAdded, widget.ID, func(current []WidgetConfig) ([]WidgetConfig, bool, error) {
		if indexOf(current, widget.ID) != -1 {
			return nil, false, fmt.Errorf("%w: %s", ErrDuplicateWidget, widget.ID)
		}
		next := make([]WidgetConfig, 0, len(current)+1)
		next = append(next, current...)
		return append(next, widget), true, nil
	})
}

// Delete removes the widget; an unknown id is a no-op.
func (g *Grid) Delete(ctx context.Context, id string) error {
	return g.mutate(ctx, ReasonDeleted, id, func(current []WidgetConfig) ([]WidgetConfig, bool, error) {
		idx := indexOf(current, id)
		if idx == -1 {
			return nil, false, nil
		}
		next := make([]WidgetConfig, 0, len(current)-1)
		next = append(next, current[:idx]...)
		return append(next, current[idx+1:]...), true, nil
	})
}

// UpdateChartType replaces only the chart type of the widget.
func (g *Grid) UpdateChartType(ctx context.Context, id string, chartType ChartType) error {
	return g.update(ctx, ReasonChartTypeChanged, id, func(w *WidgetConfig) {
		w.ChartType = chartType
	})
}

// SaveLayout replaces both span fields. Callers validate the span first.
func (g *Grid) SaveLayout(ctx context.Context, id string, span Span) error {
	return g.update(ctx, ReasonLayoutSaved, id, func(w *WidgetConfig) {
		w.ColSpan = span.ColSpan
		w.RowSpan = span.RowSpan
	})
}

// Reorder moves draggedID to the position targetID held. Equal or unknown ids
// leave the collection untouched.
func (g *Grid) Reorder(ctx context.Context, draggedID, targetID string) error {
	return g.mutate(ctx, ReasonReordered, draggedID, func(current []WidgetConfig) ([]WidgetConfig, bool, error) {
		next, moved := moveWidget(current, draggedID, targetID)
		return next, moved, nil
	})
}

// ApplyOrder reorders the collection to follow ids; see applyOrder.
func (g *Grid) ApplyOrder(ctx context.Context, ids []string) error {
	return g.mutate(ctx, ReasonReordered, "", func(current []WidgetConfig) ([]WidgetConfig, bool, error) {
		next := applyOrder(current, ids)
		if slices.Equal(widgetOrder(current), widgetOrder(next)) {
			return nil, false, nil
		}
		return next, true, nil
	})
}

func (g *Grid) update(ctx context.Context, reason, id string, apply func(*WidgetConfig)) error {
	return g.mutate(ctx, reason, id, func(current []WidgetConfig) ([]WidgetConfig, bool, error) {
		idx := indexOf(current, id)
		if idx == -1 {
			return nil, false, nil
		}
		next := append([]WidgetConfig(nil), current...)
		apply(&next[idx])
		return next, true, nil
	})
}

// mutate computes the next collection, persists it and only then swaps it in.
func (g *Grid) mutate(ctx context.Context, reason, id string, fn func([]WidgetConfig) ([]WidgetConfig, bool, error)) error {
	if g.opts.Store == nil {
		return errMissingBlobStore
	}
	g.mu.Lock()
	next, changed, err := fn(g.widgets)
	if err != nil || !changed {
		g.mu.Unlock()
		return err
	}
	if err := g.persist(ctx, next); err != nil {
		g.mu.Unlock()
		return err
	}
	g.widgets = next
	event := WidgetEvent{Reason: reason, WidgetID: id, Order: widgetOrder(next)}
	if idx := indexOf(next, id); idx != -1 && reason != ReasonReordered {
		w := cloneWidget(next[idx])
		event.Widget = &w
	}
	g.mu.Unlock()

	g.opts.Telemetry.Record(ctx, "dashboard.widget."+reason, map[string]any{
		"widget_id": id,
		"count":     len(next),
	})
	if err := g.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		g.opts.Logger.Warn("refresh hook failed", zap.String("reason", reason), zap.Error(err))
	}
	return nil
}

func (g *Grid) persist(ctx context.Context, widgets []WidgetConfig) error {
	raw, err := json.Marshal(widgets)
	if err != nil {
		return fmt.Errorf("dashboard: encode widgets: %w", err)
	}
	if err := g.opts.Store.Save(ctx, g.opts.Key, raw); err != nil {
		return fmt.Errorf("dashboard: save widgets: %w", err)
	}
	return nil
}
