package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// SeedDashboardInput lists the library templates to place; empty uses the defaults.
type SeedDashboardInput struct {
	TemplateIDs []string
}

// SeedDashboardCommand fills an empty dashboard from the widget library.
type SeedDashboardCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute seeds the dashboard.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	if err := dashboard.SeedFromLibrary(ctx, c.service, msg.TemplateIDs...); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.seed", map[string]any{
		"templates": len(msg.TemplateIDs),
	})
	return nil
}
