package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/pkg/gateway"
)

type stubService struct {
	prompts    []string
	templates  []string
	deleted    []string
	chartTypes []dashboard.ChartType
	spans      []dashboard.Span
	reorders   [][2]string
	orders     [][]string
	widget     *dashboard.WidgetConfig
	warning    string
	err        error
}

func (s *stubService) CreateFromPrompt(_ context.Context, prompt string) (*dashboard.WidgetConfig, error) {
	s.prompts = append(s.prompts, prompt)
	return s.widget, s.err
}

func (s *stubService) AddFromLibrary(_ context.Context, id string, _ *dashboard.DateRange) (*dashboard.PlacedWidget, error) {
	s.templates = append(s.templates, id)
	if s.widget == nil {
		return nil, s.err
	}
	return &dashboard.PlacedWidget{WidgetConfig: *s.widget, Warning: s.warning}, s.err
}

func (s *stubService) DeleteWidget(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubService) UpdateChartType(_ context.Context, _ string, ct dashboard.ChartType) error {
	s.chartTypes = append(s.chartTypes, ct)
	return s.err
}

func (s *stubService) SaveLayout(_ context.Context, _ string, span dashboard.Span) error {
	s.spans = append(s.spans, span)
	return s.err
}

func (s *stubService) ReorderWidgets(_ context.Context, dragged, target string) error {
	s.reorders = append(s.reorders, [2]string{dragged, target})
	return s.err
}

func (s *stubService) ApplyOrder(_ context.Context, ids []string) error {
	s.orders = append(s.orders, ids)
	return s.err
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func TestGenerateWidgetCommand(t *testing.T) {
	service := &stubService{widget: &dashboard.WidgetConfig{ID: "w1"}}
	telemetry := &stubTelemetry{}
	cmd := NewGenerateWidgetCommand(service, telemetry)
	result := &WidgetResult{}
	if err := cmd.Execute(context.Background(), GenerateWidgetInput{Prompt: "sales", Result: result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Widget == nil || result.Widget.ID != "w1" {
		t.Fatalf("expected result widget, got %#v", result.Widget)
	}
	if len(telemetry.events) != 1 {
		t.Fatalf("expected telemetry event")
	}
}

func TestGenerateWidgetCommandWithoutResultHolder(t *testing.T) {
	cmd := NewGenerateWidgetCommand(&stubService{}, nil)
	if err := cmd.Execute(context.Background(), GenerateWidgetInput{Prompt: "sales"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestGenerateWidgetCommandPropagatesErrors(t *testing.T) {
	cmd := NewGenerateWidgetCommand(&stubService{err: dashboard.ErrBlankPrompt}, nil)
	err := cmd.Execute(context.Background(), GenerateWidgetInput{Prompt: " "})
	if !errors.Is(err, dashboard.ErrBlankPrompt) {
		t.Fatalf("expected ErrBlankPrompt, got %v", err)
	}
}

func TestAddLibraryWidgetCommand(t *testing.T) {
	service := &stubService{widget: &dashboard.WidgetConfig{ID: "w2"}}
	cmd := NewAddLibraryWidgetCommand(service, nil)
	result := &WidgetResult{}
	if err := cmd.Execute(context.Background(), AddLibraryWidgetInput{TemplateID: "8", Result: result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.templates) != 1 || service.templates[0] != "8" {
		t.Fatalf("expected template 8, got %v", service.templates)
	}
	if result.Widget == nil || result.Widget.ID != "w2" {
		t.Fatalf("expected widget result, got %#v", result.Widget)
	}
	if result.Warning != "" {
		t.Fatalf("expected no warning, got %q", result.Warning)
	}
	if err := cmd.Execute(context.Background(), AddLibraryWidgetInput{}); err == nil {
		t.Fatalf("expected missing template id error")
	}
}

func TestAddLibraryWidgetCommandPassesWarning(t *testing.T) {
	service := &stubService{widget: &dashboard.WidgetConfig{ID: "w3"}, warning: dashboard.FallbackWarning}
	cmd := NewAddLibraryWidgetCommand(service, nil)
	result := &WidgetResult{}
	if err := cmd.Execute(context.Background(), AddLibraryWidgetInput{TemplateID: "3", Result: result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Warning != dashboard.FallbackWarning {
		t.Fatalf("expected fallback warning, got %q", result.Warning)
	}
}

func TestRemoveWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "widget-1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.deleted) != 1 {
		t.Fatalf("expected remove call")
	}
}

func TestUpdateChartTypeCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewUpdateChartTypeCommand(service, nil)
	if err := cmd.Execute(context.Background(), UpdateChartTypeInput{WidgetID: "w1", ChartType: "radialbar"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.chartTypes) != 1 || service.chartTypes[0] != dashboard.ChartRadialBar {
		t.Fatalf("expected radialBar, got %v", service.chartTypes)
	}
	err := cmd.Execute(context.Background(), UpdateChartTypeInput{WidgetID: "w1", ChartType: "scatter"})
	if !errors.Is(err, dashboard.ErrUnknownChartType) {
		t.Fatalf("expected ErrUnknownChartType, got %v", err)
	}
	if len(service.chartTypes) != 1 {
		t.Fatalf("invalid chart type must not reach the service")
	}
}

func TestSaveLayoutCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSaveLayoutCommand(service, nil)
	if err := cmd.Execute(context.Background(), SaveLayoutInput{WidgetID: "w1", ColSpan: 3, RowSpan: 2}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.spans[0] != (dashboard.Span{ColSpan: 3, RowSpan: 2}) {
		t.Fatalf("unexpected span %v", service.spans[0])
	}
	if err := cmd.Execute(context.Background(), SaveLayoutInput{ColSpan: 1, RowSpan: 1}); err == nil {
		t.Fatalf("expected missing widget id error")
	}
}

func TestReorderWidgetsCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewReorderWidgetsCommand(service, nil)
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{DraggedID: "w1", TargetID: "w2"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{WidgetIDs: []string{"w2", "w1"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.reorders) != 1 || len(service.orders) != 1 {
		t.Fatalf("expected one reorder and one apply order, got %v %v", service.reorders, service.orders)
	}
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{DraggedID: "w1"}); err == nil {
		t.Fatalf("expected error for incomplete input")
	}
}

type stubTracker struct {
	calls []string
	moved bool
}

func (s *stubTracker) Start(id string) bool { s.calls = append(s.calls, "start:"+id); return true }
func (s *stubTracker) Hover(id string) bool { s.calls = append(s.calls, "hover:"+id); return true }
func (s *stubTracker) End()                 { s.calls = append(s.calls, "end") }
func (s *stubTracker) Drop(context.Context) (bool, error) {
	s.calls = append(s.calls, "drop")
	return s.moved, nil
}

func TestDragGestureCommand(t *testing.T) {
	tracker := &stubTracker{moved: true}
	telemetry := &stubTelemetry{}
	cmd := NewDragGestureCommand(tracker, telemetry)
	for _, msg := range []DragGestureInput{
		{Action: DragStart, WidgetID: "a"},
		{Action: DragHover, WidgetID: "b"},
		{Action: DragDrop},
		{Action: DragEnd},
	} {
		if err := cmd.Execute(context.Background(), msg); err != nil {
			t.Fatalf("Execute(%s) returned error: %v", msg.Action, err)
		}
	}
	want := []string{"start:a", "hover:b", "drop", "end"}
	if len(tracker.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, tracker.calls)
	}
	for i := range want {
		if tracker.calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tracker.calls)
		}
	}
	if len(telemetry.events) != 1 {
		t.Fatalf("expected drop telemetry")
	}
	if err := cmd.Execute(context.Background(), DragGestureInput{Action: "fling"}); err == nil {
		t.Fatalf("expected unknown action error")
	}
}

func TestDragGestureCommandWithRealTracker(t *testing.T) {
	service := &stubService{}
	tracker := dashboard.NewDragTracker(reorderAdapter{service})
	cmd := NewDragGestureCommand(tracker, nil)
	ctx := context.Background()
	_ = cmd.Execute(ctx, DragGestureInput{Action: DragStart, WidgetID: "a"})
	_ = cmd.Execute(ctx, DragGestureInput{Action: DragHover, WidgetID: "c"})
	if err := cmd.Execute(ctx, DragGestureInput{Action: DragDrop}); err != nil {
		t.Fatalf("drop returned error: %v", err)
	}
	if len(service.reorders) != 1 || service.reorders[0] != [2]string{"a", "c"} {
		t.Fatalf("expected reorder a->c, got %v", service.reorders)
	}
}

type reorderAdapter struct{ s *stubService }

func (r reorderAdapter) Reorder(ctx context.Context, dragged, target string) error {
	return r.s.ReorderWidgets(ctx, dragged, target)
}

type stubProber struct{ mode gateway.Mode }

func (s stubProber) Probe(context.Context) gateway.Mode { return s.mode }

func TestProbeBackendCommand(t *testing.T) {
	var mode gateway.Mode
	cmd := NewProbeBackendCommand(stubProber{mode: gateway.ModeLive}, nil)
	if err := cmd.Execute(context.Background(), ProbeBackendInput{Mode: &mode}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if mode != gateway.ModeLive {
		t.Fatalf("expected live mode, got %s", mode)
	}
	if err := NewProbeBackendCommand(nil, nil).Execute(context.Background(), ProbeBackendInput{}); err == nil {
		t.Fatalf("expected missing gateway error")
	}
}

type memStore struct{ blobs map[string][]byte }

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, dashboard.ErrBlobNotFound
	}
	return b, nil
}

func (m *memStore) Save(_ context.Context, key string, v []byte) error {
	m.blobs[key] = v
	return nil
}

func TestSeedDashboardCommand(t *testing.T) {
	grid := dashboard.NewGrid(dashboard.GridOptions{Store: &memStore{blobs: map[string][]byte{}}})
	if err := grid.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	service := dashboard.NewService(dashboard.Options{Grid: grid, Gateway: gateway.New(gateway.Config{})})
	telemetry := &stubTelemetry{}
	cmd := NewSeedDashboardCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{TemplateIDs: []string{"1", "8"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	widgets := grid.Widgets()
	if len(widgets) != 2 || widgets[1].Title != "Device Usage Breakdown" {
		t.Fatalf("unexpected widgets %#v", widgets)
	}
	if len(telemetry.events) != 1 {
		t.Fatalf("expected telemetry to record seeding")
	}
}
