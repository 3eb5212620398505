package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// AddLibraryWidgetInput picks a predefined template.
type AddLibraryWidgetInput struct {
	TemplateID string               `json:"template_id"`
	DateRange  *dashboard.DateRange `json:"date_range,omitempty"`
	Result     *WidgetResult        `json:"-"`
}

type libraryService interface {
	AddFromLibrary(ctx context.Context, templateID string, dateRange *dashboard.DateRange) (*dashboard.PlacedWidget, error)
}

// AddLibraryWidgetCommand wraps Service.AddFromLibrary.
type AddLibraryWidgetCommand struct {
	service   libraryService
	telemetry Telemetry
}

// NewAddLibraryWidgetCommand creates a command instance.
func NewAddLibraryWidgetCommand(service libraryService, telemetry Telemetry) *AddLibraryWidgetCommand {
	return &AddLibraryWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddLibraryWidgetInput] = (*AddLibraryWidgetCommand)(nil)

// Execute instantiates the template.
func (c *AddLibraryWidgetCommand) Execute(ctx context.Context, msg AddLibraryWidgetInput) error {
	if c.service == nil {
		return errors.New("library command requires service")
	}
	if msg.TemplateID == "" {
		return errors.New("library command requires template id")
	}
	placed, err := c.service.AddFromLibrary(ctx, msg.TemplateID, msg.DateRange)
	if err != nil {
		return err
	}
	if placed != nil {
		msg.Result.set(&placed.WidgetConfig)
		if msg.Result != nil {
			msg.Result.Warning = placed.Warning
		}
	}
	c.telemetry.Record(ctx, "dashboard.command.library", map[string]any{
		"template_id": msg.TemplateID,
	})
	return nil
}
