package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/commands"
	"github.com/goliatone/go-aidash/components/dashboard/httpapi"
)

// Config wires go-router with the dashboard controller, command API and hook.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
// API paths are relative to BasePath + API.
type RouteConfig struct {
	HTML      string
	Layout    string
	API       string
	Generate  string
	Library   string
	WidgetID  string
	ChartType string
	SpanPath  string
	Reorder   string
	Drag      string
	WebSocket string
}

// registrar is the slice of router.Router the dashboard mounts on.
type registrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// Register mounts the dashboard page, JSON layout, REST API and WebSocket
// feed on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/dashboard"
	}
	mount(cfg.Router.Group(base), cfg.Controller, cfg.API, cfg.Broadcast, defaultRouteConfig(cfg.Routes))
	return nil
}

func mount(r registrar, controller *dashboard.Controller, api httpapi.Executor, hook *dashboard.BroadcastHook, routes RouteConfig) {
	r.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := controller.RenderTemplate(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	r.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		page, err := controller.Page(ctx.Context())
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, page)
	}))

	if api != nil {
		registerAPI(r, api, routes)
	}
	if hook != nil {
		registerWebSocket(r, hook, routes.API+routes.WebSocket)
	}
}

type action string

const (
	actionGenerate  action = "generate"
	actionLibrary   action = "library"
	actionRemove    action = "remove"
	actionChartType action = "chart_type"
	actionLayout    action = "layout"
	actionReorder   action = "reorder"
	actionDrag      action = "drag"
)

func registerAPI(r registrar, api httpapi.Executor, routes RouteConfig) {
	handle := func(act action) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			status, payload := dispatch(ctx.Context(), api, act, ctx.Param("id"), ctx.Body())
			return ctx.JSON(status, payload)
		})
	}
	r.Post(routes.API+routes.Generate, handle(actionGenerate))
	r.Post(routes.API+routes.Library, handle(actionLibrary))
	r.Post(routes.API+routes.Reorder, handle(actionReorder))
	r.Post(routes.API+routes.Drag, handle(actionDrag))
	r.Delete(routes.API+routes.WidgetID, handle(actionRemove))
	r.Put(routes.API+routes.ChartType, handle(actionChartType))
	r.Put(routes.API+routes.SpanPath, handle(actionLayout))
}

// dispatch decodes body for act, runs it and returns the response status and payload.
func dispatch(ctx context.Context, api httpapi.Executor, act action, id string, body []byte) (int, any) {
	switch act {
	case actionGenerate:
		var input commands.GenerateWidgetInput
		if err := json.Unmarshal(body, &input); err != nil {
			return badRequest(err)
		}
		input.Result = &commands.WidgetResult{}
		return created(api.Generate(ctx, input), input.Result)
	case actionLibrary:
		var input commands.AddLibraryWidgetInput
		if err := json.Unmarshal(body, &input); err != nil {
			return badRequest(err)
		}
		input.Result = &commands.WidgetResult{}
		return created(api.AddLibrary(ctx, input), input.Result)
	case actionRemove:
		if id == "" {
			return badRequest(errors.New("widget id is required"))
		}
		return done(api.Remove(ctx, commands.RemoveWidgetInput{WidgetID: id}), "removed")
	case actionChartType:
		var payload struct {
			ChartType string `json:"chart_type"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return badRequest(err)
		}
		input := commands.UpdateChartTypeInput{WidgetID: id, ChartType: payload.ChartType}
		return done(api.UpdateChartType(ctx, input), "updated")
	case actionLayout:
		var span dashboard.Span
		if err := json.Unmarshal(body, &span); err != nil {
			return badRequest(err)
		}
		input := commands.SaveLayoutInput{WidgetID: id, ColSpan: span.ColSpan, RowSpan: span.RowSpan}
		return done(api.SaveLayout(ctx, input), "saved")
	case actionReorder:
		var input commands.ReorderWidgetsInput
		if err := json.Unmarshal(body, &input); err != nil {
			return badRequest(err)
		}
		return done(api.Reorder(ctx, input), "reordered")
	case actionDrag:
		var input commands.DragGestureInput
		if err := json.Unmarshal(body, &input); err != nil {
			return badRequest(err)
		}
		return done(api.Drag(ctx, input), "ok")
	default:
		return http.StatusNotFound, errorBody(fmt.Errorf("unknown action %q", act))
	}
}

func created(err error, result *commands.WidgetResult) (int, any) {
	if err != nil {
		return httpapi.StatusFor(err), errorBody(err)
	}
	if result.Widget == nil {
		return httpapi.StatusFor(httpapi.ErrNoWidget), errorBody(httpapi.ErrNoWidget)
	}
	return http.StatusCreated, httpapi.NewCreatedWidget(result)
}

func done(err error, status string) (int, any) {
	if err != nil {
		return httpapi.StatusFor(err), errorBody(err)
	}
	return http.StatusOK, map[string]string{"status": status}
}

func badRequest(err error) (int, any) {
	return http.StatusBadRequest, errorBody(err)
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func registerWebSocket(r registrar, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, errorBody(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Layout == "" {
		routes.Layout = "/_layout"
	}
	if routes.API == "" {
		routes.API = "/api"
	}
	if routes.Generate == "" {
		routes.Generate = "/widgets/generate"
	}
	if routes.Library == "" {
		routes.Library = "/widgets/library"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/widgets/:id"
	}
	if routes.ChartType == "" {
		routes.ChartType = "/widgets/:id/chart-type"
	}
	if routes.SpanPath == "" {
		routes.SpanPath = "/widgets/:id/layout"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/widgets/reorder"
	}
	if routes.Drag == "" {
		routes.Drag = "/widgets/drag"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
