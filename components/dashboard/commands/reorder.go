package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReorderWidgetsInput moves one widget onto another's position, or rewrites
// the whole order when WidgetIDs is set.
type ReorderWidgetsInput struct {
	DraggedID string   `json:"dragged_id"`
	TargetID  string   `json:"target_id"`
	WidgetIDs []string `json:"widget_ids"`
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, draggedID, targetID string) error
	ApplyOrder(ctx context.Context, ids []string) error
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets and Service.ApplyOrder.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	var err error
	switch {
	case len(msg.WidgetIDs) > 0:
		err = c.service.ApplyOrder(ctx, msg.WidgetIDs)
	case msg.DraggedID != "" && msg.TargetID != "":
		err = c.service.ReorderWidgets(ctx, msg.DraggedID, msg.TargetID)
	default:
		return errors.New("reorder command requires dragged and target ids or a full order")
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{
		"dragged_id": msg.DraggedID,
		"target_id":  msg.TargetID,
		"count":      len(msg.WidgetIDs),
	})
	return nil
}
