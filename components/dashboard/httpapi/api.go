package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/commands"
	"github.com/goliatone/go-aidash/components/dashboard/queries"
)

// Handlers exposes the dashboard over plain net/http.
type Handlers struct {
	Executor Executor
	Widgets  gocommand.Querier[queries.WidgetsInput, []dashboard.WidgetConfig]
	Layout   gocommand.Querier[queries.LayoutInput, []dashboard.RenderedWidget]
	Library  gocommand.Querier[queries.LibraryInput, []dashboard.PredefinedWidget]
}

type chartTypeRequest struct {
	ChartType string `json:"chart_type"`
}

type layoutRequest struct {
	ColSpan int `json:"colSpan"`
	RowSpan int `json:"rowSpan"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreatedWidget is the body of a 201 answer: the widget fields plus a warning
// the page shows when the rows are substitute data.
type CreatedWidget struct {
	*dashboard.WidgetConfig
	Warning string `json:"warning,omitempty"`
}

// NewCreatedWidget builds the 201 body from a command result.
func NewCreatedWidget(result *commands.WidgetResult) CreatedWidget {
	return CreatedWidget{WidgetConfig: result.Widget, Warning: result.Warning}
}

// HandleGenerate creates a widget from a prompt.
func (h Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input commands.GenerateWidgetInput
	if !decode(w, r, &input) {
		return
	}
	result := &commands.WidgetResult{}
	input.Result = result
	if err := h.Executor.Generate(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, result)
}

// HandleAddLibrary places a predefined widget.
func (h Handlers) HandleAddLibrary(w http.ResponseWriter, r *http.Request) {
	var input commands.AddLibraryWidgetInput
	if !decode(w, r, &input) {
		return
	}
	result := &commands.WidgetResult{}
	input.Result = result
	if err := h.Executor.AddLibrary(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, result)
}

// HandleRemove deletes a widget.
func (h Handlers) HandleRemove(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Executor.Remove(r.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChartType switches a widget's chart type.
func (h Handlers) HandleChartType(w http.ResponseWriter, r *http.Request, id string) {
	var req chartTypeRequest
	if !decode(w, r, &req) {
		return
	}
	input := commands.UpdateChartTypeInput{WidgetID: id, ChartType: req.ChartType}
	if err := h.Executor.UpdateChartType(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLayout stores a widget's span.
func (h Handlers) HandleLayout(w http.ResponseWriter, r *http.Request, id string) {
	var req layoutRequest
	if !decode(w, r, &req) {
		return
	}
	input := commands.SaveLayoutInput{WidgetID: id, ColSpan: req.ColSpan, RowSpan: req.RowSpan}
	if err := h.Executor.SaveLayout(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReorder moves a widget onto another or applies a full order.
func (h Handlers) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var input commands.ReorderWidgetsInput
	if !decode(w, r, &input) {
		return
	}
	if err := h.Executor.Reorder(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDrag feeds one drag gesture event.
func (h Handlers) HandleDrag(w http.ResponseWriter, r *http.Request) {
	var input commands.DragGestureInput
	if !decode(w, r, &input) {
		return
	}
	if err := h.Executor.Drag(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWidgets lists persisted widgets, or one widget when id is set.
func (h Handlers) HandleWidgets(w http.ResponseWriter, r *http.Request, id string) {
	writeQuery(r.Context(), w, h.Widgets, queries.WidgetsInput{WidgetID: id})
}

// HandleLayoutView returns the widgets with their rendered visuals.
func (h Handlers) HandleLayoutView(w http.ResponseWriter, r *http.Request) {
	writeQuery(r.Context(), w, h.Layout, queries.LayoutInput{})
}

// HandleLibrary lists the predefined widget templates.
func (h Handlers) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	writeQuery(r.Context(), w, h.Library, queries.LibraryInput{})
}

// Routes mounts every handler on a chi router. Live updates are served on
// /ws (WebSocket) and /events (Server-Sent Events) when hook is set.
func (h Handlers) Routes(hook *dashboard.BroadcastHook) http.Handler {
	r := chi.NewRouter()
	r.Get("/widgets", func(w http.ResponseWriter, r *http.Request) { h.HandleWidgets(w, r, "") })
	r.Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) { h.HandleWidgets(w, r, chi.URLParam(r, "id")) })
	r.Get("/layout", h.HandleLayoutView)
	r.Get("/library", h.HandleLibrary)
	r.Post("/widgets/generate", h.HandleGenerate)
	r.Post("/widgets/library", h.HandleAddLibrary)
	r.Post("/widgets/reorder", h.HandleReorder)
	r.Post("/widgets/drag", h.HandleDrag)
	r.Delete("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) { h.HandleRemove(w, r, chi.URLParam(r, "id")) })
	r.Put("/widgets/{id}/chart-type", func(w http.ResponseWriter, r *http.Request) { h.HandleChartType(w, r, chi.URLParam(r, "id")) })
	r.Put("/widgets/{id}/layout", func(w http.ResponseWriter, r *http.Request) { h.HandleLayout(w, r, chi.URLParam(r, "id")) })
	if hook != nil {
		r.Get("/ws", hook.ServeWebSocket)
		r.Get("/events", hook.ServeSSE)
	}
	return r
}

func decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid payload: %v", err)})
		return false
	}
	return true
}

func writeCreated(w http.ResponseWriter, result *commands.WidgetResult) {
	if result.Widget == nil {
		writeError(w, ErrNoWidget)
		return
	}
	writeJSON(w, http.StatusCreated, NewCreatedWidget(result))
}

func writeQuery[T, R any](ctx context.Context, w http.ResponseWriter, q gocommand.Querier[T, R], input T) {
	if q == nil {
		writeError(w, errors.New("httpapi: query not configured"))
		return
	}
	out, err := q.Query(ctx, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
