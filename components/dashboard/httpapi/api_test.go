package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/commands"
	"github.com/goliatone/go-aidash/components/dashboard/queries"
	"github.com/goliatone/go-aidash/pkg/blobstore"
	"github.com/goliatone/go-aidash/pkg/gateway"
)

type stubExecutor struct {
	widget *dashboard.WidgetConfig
	err    error

	generated commands.GenerateWidgetInput
	library   commands.AddLibraryWidgetInput
	removed   commands.RemoveWidgetInput
	chartType commands.UpdateChartTypeInput
	layout    commands.SaveLayoutInput
	reordered commands.ReorderWidgetsInput
	drag      commands.DragGestureInput
}

func (s *stubExecutor) Generate(_ context.Context, input commands.GenerateWidgetInput) error {
	s.generated = input
	if s.err == nil && s.widget != nil {
		input.Result.Widget = s.widget
	}
	return s.err
}

func (s *stubExecutor) AddLibrary(_ context.Context, input commands.AddLibraryWidgetInput) error {
	s.library = input
	if s.err == nil && s.widget != nil {
		input.Result.Widget = s.widget
	}
	return s.err
}

func (s *stubExecutor) Remove(_ context.Context, input commands.RemoveWidgetInput) error {
	s.removed = input
	return s.err
}

func (s *stubExecutor) UpdateChartType(_ context.Context, input commands.UpdateChartTypeInput) error {
	s.chartType = input
	return s.err
}

func (s *stubExecutor) SaveLayout(_ context.Context, input commands.SaveLayoutInput) error {
	s.layout = input
	return s.err
}

func (s *stubExecutor) Reorder(_ context.Context, input commands.ReorderWidgetsInput) error {
	s.reordered = input
	return s.err
}

func (s *stubExecutor) Drag(_ context.Context, input commands.DragGestureInput) error {
	s.drag = input
	return s.err
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateReturnsCreatedWidget(t *testing.T) {
	exec := &stubExecutor{widget: &dashboard.WidgetConfig{ID: "w1", Title: "Sales"}}
	h := Handlers{Executor: exec}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/generate", `{"prompt":"sales by month"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sales by month", exec.generated.Prompt)
	var got dashboard.WidgetConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "w1", got.ID)
}

func TestGenerateWithoutWidgetIsBadGateway(t *testing.T) {
	h := Handlers{Executor: &stubExecutor{}}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/generate", `{"prompt":"anything"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "no widget")
}

func TestGenerateBlankPromptIsBadRequest(t *testing.T) {
	h := Handlers{Executor: &stubExecutor{err: dashboard.ErrBlankPrompt}}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/generate", `{"prompt":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidPayloadIsBadRequest(t *testing.T) {
	exec := &stubExecutor{}
	h := Handlers{Executor: exec}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/library", `{`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exec.library.TemplateID)
}

func TestAddLibraryUnknownTemplateIsNotFound(t *testing.T) {
	exec := &stubExecutor{err: dashboard.ErrTemplateNotFound}
	h := Handlers{Executor: exec}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/library", `{"template_id":"99"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "99", exec.library.TemplateID)
}

func TestEditRoutesPassPathID(t *testing.T) {
	exec := &stubExecutor{}
	h := Handlers{Executor: exec}.Routes(nil)

	rec := serve(t, h, http.MethodDelete, "/widgets/w7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "w7", exec.removed.WidgetID)

	rec = serve(t, h, http.MethodPut, "/widgets/w7/chart-type", `{"chart_type":"Donut"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, commands.UpdateChartTypeInput{WidgetID: "w7", ChartType: "Donut"}, exec.chartType)

	rec = serve(t, h, http.MethodPut, "/widgets/w7/layout", `{"colSpan":3,"rowSpan":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, commands.SaveLayoutInput{WidgetID: "w7", ColSpan: 3, RowSpan: 2}, exec.layout)

	rec = serve(t, h, http.MethodPost, "/widgets/reorder", `{"dragged_id":"a","target_id":"b"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "a", exec.reordered.DraggedID)

	rec = serve(t, h, http.MethodPost, "/widgets/drag", `{"action":"start","widget_id":"a"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, commands.DragStart, exec.drag.Action)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{dashboard.ErrUnknownChartType, http.StatusBadRequest},
		{dashboard.ErrInvalidLayout, http.StatusBadRequest},
		{queries.ErrWidgetNotFound, http.StatusNotFound},
		{dashboard.ErrDuplicateWidget, http.StatusConflict},
		{ErrNoWidget, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "error %v", tc.err)
	}
}

func TestMissingCommandIsServerError(t *testing.T) {
	h := Handlers{Executor: CommandExecutor{}}.Routes(nil)

	rec := serve(t, h, http.MethodDelete, "/widgets/w1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRoutesAgainstService(t *testing.T) {
	grid := dashboard.NewGrid(dashboard.GridOptions{Store: blobstore.NewMemory()})
	svc := dashboard.NewService(dashboard.Options{
		Grid:        grid,
		Gateway:     gateway.New(gateway.Config{Rand: func() float64 { return 0.5 }}),
		IDGenerator: func() string { return "lib-1" },
	})
	h := Handlers{
		Executor: NewCommandExecutor(Services{Dashboard: svc}),
		Widgets:  queries.NewWidgetsQuery(svc),
		Layout:   queries.NewLayoutQuery(svc),
		Library:  queries.NewLibraryQuery(svc),
	}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/library", `{"template_id":"8"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/widgets/lib-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var widgets []dashboard.WidgetConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &widgets))
	require.Len(t, widgets, 1)
	assert.Equal(t, "Device Usage Breakdown", widgets[0].Title)

	rec = serve(t, h, http.MethodGet, "/widgets/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodPut, "/widgets/lib-1/chart-type", `{"chart_type":"sparkle"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodGet, "/layout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lib-1")

	rec = serve(t, h, http.MethodGet, "/library", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Device Usage Breakdown")
}

func TestLibraryWidgetWarnsWhenBackendQueryFails(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			_, _ = w.Write([]byte(`{"message":"ok"}`))
			return
		}
		http.Error(w, "database offline", http.StatusInternalServerError)
	}))
	t.Cleanup(backend.Close)

	gw := gateway.New(gateway.Config{BaseURL: backend.URL})
	require.Equal(t, gateway.ModeLive, gw.Probe(context.Background()))

	ids := []string{"lib-1", "lib-2"}
	svc := dashboard.NewService(dashboard.Options{
		Grid:    dashboard.NewGrid(dashboard.GridOptions{Store: blobstore.NewMemory()}),
		Gateway: gw,
		IDGenerator: func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		},
	})
	h := Handlers{Executor: NewCommandExecutor(Services{Dashboard: svc})}.Routes(nil)

	rec := serve(t, h, http.MethodPost, "/widgets/library", `{"template_id":"8"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		ID      string          `json:"id"`
		Data    []dashboard.Row `json:"data"`
		Warning string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "lib-1", body.ID)
	assert.Equal(t, dashboard.FallbackWarning, body.Warning)
	assert.NotEmpty(t, body.Data)
	assert.Equal(t, gateway.ModeFallback, gw.Mode())

	// once latched, substitute data is served without repeating the warning
	rec = serve(t, h, http.MethodPost, "/widgets/library", `{"template_id":"8"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), `"warning"`)
}
