package httpapi

import (
	"context"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-aidash/components/dashboard"
	"github.com/goliatone/go-aidash/components/dashboard/commands"
	"github.com/goliatone/go-aidash/components/dashboard/queries"
)

// ErrNoWidget is reported when the backend produced nothing to place.
var ErrNoWidget = errors.New("httpapi: no widget could be created from the backend response")

// Executor is the transport-neutral surface every HTTP adapter calls into.
type Executor interface {
	Generate(ctx context.Context, input commands.GenerateWidgetInput) error
	AddLibrary(ctx context.Context, input commands.AddLibraryWidgetInput) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	UpdateChartType(ctx context.Context, input commands.UpdateChartTypeInput) error
	SaveLayout(ctx context.Context, input commands.SaveLayoutInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Drag(ctx context.Context, input commands.DragGestureInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	GenerateCommand  gocommand.Commander[commands.GenerateWidgetInput]
	LibraryCommand   gocommand.Commander[commands.AddLibraryWidgetInput]
	RemoveCommand    gocommand.Commander[commands.RemoveWidgetInput]
	ChartTypeCommand gocommand.Commander[commands.UpdateChartTypeInput]
	LayoutCommand    gocommand.Commander[commands.SaveLayoutInput]
	ReorderCommand   gocommand.Commander[commands.ReorderWidgetsInput]
	DragCommand      gocommand.Commander[commands.DragGestureInput]
}

var _ Executor = CommandExecutor{}

var errCommandMissing = errors.New("httpapi: command not configured")

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errCommandMissing
	}
	return cmd.Execute(ctx, msg)
}

func (e CommandExecutor) Generate(ctx context.Context, input commands.GenerateWidgetInput) error {
	return execute(ctx, e.GenerateCommand, input)
}

func (e CommandExecutor) AddLibrary(ctx context.Context, input commands.AddLibraryWidgetInput) error {
	return execute(ctx, e.LibraryCommand, input)
}

func (e CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommand, input)
}

func (e CommandExecutor) UpdateChartType(ctx context.Context, input commands.UpdateChartTypeInput) error {
	return execute(ctx, e.ChartTypeCommand, input)
}

func (e CommandExecutor) SaveLayout(ctx context.Context, input commands.SaveLayoutInput) error {
	return execute(ctx, e.LayoutCommand, input)
}

func (e CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCommand, input)
}

func (e CommandExecutor) Drag(ctx context.Context, input commands.DragGestureInput) error {
	return execute(ctx, e.DragCommand, input)
}

// Services bundles what NewCommandExecutor needs from the dashboard.
type Services struct {
	Dashboard *dashboard.Service
	Telemetry dashboard.Telemetry
}

// NewCommandExecutor wires every command against a dashboard service.
func NewCommandExecutor(svc Services) CommandExecutor {
	return CommandExecutor{
		GenerateCommand:  commands.NewGenerateWidgetCommand(svc.Dashboard, svc.Telemetry),
		LibraryCommand:   commands.NewAddLibraryWidgetCommand(svc.Dashboard, svc.Telemetry),
		RemoveCommand:    commands.NewRemoveWidgetCommand(svc.Dashboard, svc.Telemetry),
		ChartTypeCommand: commands.NewUpdateChartTypeCommand(svc.Dashboard, svc.Telemetry),
		LayoutCommand:    commands.NewSaveLayoutCommand(svc.Dashboard, svc.Telemetry),
		ReorderCommand:   commands.NewReorderWidgetsCommand(svc.Dashboard, svc.Telemetry),
		DragCommand:      commands.NewDragGestureCommand(svc.Dashboard.Drag(), svc.Telemetry),
	}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrBlankPrompt),
		errors.Is(err, dashboard.ErrUnknownChartType),
		errors.Is(err, dashboard.ErrInvalidLayout):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrTemplateNotFound),
		errors.Is(err, queries.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrDuplicateWidget):
		return http.StatusConflict
	case errors.Is(err, ErrNoWidget):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
