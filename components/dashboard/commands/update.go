package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// UpdateChartTypeInput switches a widget's chart type. ChartType is parsed
// case-insensitively.
type UpdateChartTypeInput struct {
	WidgetID  string `json:"widget_id"`
	ChartType string `json:"chart_type"`
}

type chartTypeService interface {
	UpdateChartType(ctx context.Context, id string, chartType dashboard.ChartType) error
}

// UpdateChartTypeCommand wraps Service.UpdateChartType.
type UpdateChartTypeCommand struct {
	service   chartTypeService
	telemetry Telemetry
}

// NewUpdateChartTypeCommand creates the command.
func NewUpdateChartTypeCommand(service chartTypeService, telemetry Telemetry) *UpdateChartTypeCommand {
	return &UpdateChartTypeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateChartTypeInput] = (*UpdateChartTypeCommand)(nil)

// Execute validates the chart type and applies it.
func (c *UpdateChartTypeCommand) Execute(ctx context.Context, msg UpdateChartTypeInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("update command requires widget id")
	}
	chartType, err := dashboard.ParseChartType(msg.ChartType)
	if err != nil {
		return err
	}
	if err := c.service.UpdateChartType(ctx, msg.WidgetID, chartType); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.chart_type", map[string]any{
		"widget_id":  msg.WidgetID,
		"chart_type": string(chartType),
	})
	return nil
}

// SaveLayoutInput carries new layout settings.
type SaveLayoutInput struct {
	WidgetID string `json:"widget_id"`
	ColSpan  int    `json:"colSpan"`
	RowSpan  int    `json:"rowSpan"`
}

type layoutService interface {
	SaveLayout(ctx context.Context, id string, span dashboard.Span) error
}

// SaveLayoutCommand wraps Service.SaveLayout.
type SaveLayoutCommand struct {
	service   layoutService
	telemetry Telemetry
}

// NewSaveLayoutCommand creates the command.
func NewSaveLayoutCommand(service layoutService, telemetry Telemetry) *SaveLayoutCommand {
	return &SaveLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutInput] = (*SaveLayoutCommand)(nil)

// Execute stores the span; the service validates the bounds.
func (c *SaveLayoutCommand) Execute(ctx context.Context, msg SaveLayoutInput) error {
	if c.service == nil {
		return errors.New("layout command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("layout command requires widget id")
	}
	span := dashboard.Span{ColSpan: msg.ColSpan, RowSpan: msg.RowSpan}
	if err := c.service.SaveLayout(ctx, msg.WidgetID, span); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.layout", map[string]any{
		"widget_id": msg.WidgetID,
		"col_span":  msg.ColSpan,
		"row_span":  msg.RowSpan,
	})
	return nil
}
