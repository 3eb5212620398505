package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// GenerateWidgetInput carries a natural-language prompt.
type GenerateWidgetInput struct {
	Prompt string        `json:"prompt"`
	Result *WidgetResult `json:"-"`
}

type generateService interface {
	CreateFromPrompt(ctx context.Context, prompt string) (*dashboard.WidgetConfig, error)
}

// GenerateWidgetCommand wraps Service.CreateFromPrompt.
type GenerateWidgetCommand struct {
	service   generateService
	telemetry Telemetry
}

// NewGenerateWidgetCommand builds the command.
func NewGenerateWidgetCommand(service generateService, telemetry Telemetry) *GenerateWidgetCommand {
	return &GenerateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[GenerateWidgetInput] = (*GenerateWidgetCommand)(nil)

// Execute asks the service for a widget and reports it through msg.Result.
func (c *GenerateWidgetCommand) Execute(ctx context.Context, msg GenerateWidgetInput) error {
	if c.service == nil {
		return errors.New("generate command requires service")
	}
	widget, err := c.service.CreateFromPrompt(ctx, msg.Prompt)
	if err != nil {
		return err
	}
	msg.Result.set(widget)
	c.telemetry.Record(ctx, "dashboard.command.generate", map[string]any{
		"created": widget != nil,
	})
	return nil
}
