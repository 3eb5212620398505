package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-aidash/pkg/gateway"
)

// ProbeBackendInput receives the mode the gateway settled on.
type ProbeBackendInput struct {
	Mode *gateway.Mode
}

type prober interface {
	Probe(ctx context.Context) gateway.Mode
}

// ProbeBackendCommand runs the startup liveness check against the backend.
type ProbeBackendCommand struct {
	gateway   prober
	telemetry Telemetry
}

// NewProbeBackendCommand builds the command.
func NewProbeBackendCommand(gw prober, telemetry Telemetry) *ProbeBackendCommand {
	return &ProbeBackendCommand{gateway: gw, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ProbeBackendInput] = (*ProbeBackendCommand)(nil)

// Execute probes once; a failed probe is not an error, the gateway just stays in fallback.
func (c *ProbeBackendCommand) Execute(ctx context.Context, msg ProbeBackendInput) error {
	if c.gateway == nil {
		return errors.New("probe command requires gateway")
	}
	mode := c.gateway.Probe(ctx)
	if msg.Mode != nil {
		*msg.Mode = mode
	}
	c.telemetry.Record(ctx, "gateway.probe", map[string]any{"mode": string(mode)})
	return nil
}
