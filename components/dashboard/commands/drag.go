package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// Drag gesture actions.
const (
	DragStart = "start"
	DragHover = "hover"
	DragDrop  = "drop"
	DragEnd   = "end"
)

// DragGestureInput is one pointer event of a drag gesture.
type DragGestureInput struct {
	Action   string `json:"action"`
	WidgetID string `json:"widget_id"`
}

type dragTracker interface {
	Start(sourceID string) bool
	Hover(targetID string) bool
	Drop(ctx context.Context) (bool, error)
	End()
}

// DragGestureCommand feeds pointer events into the dashboard drag tracker.
type DragGestureCommand struct {
	tracker   dragTracker
	telemetry Telemetry
}

// NewDragGestureCommand builds the command.
func NewDragGestureCommand(tracker dragTracker, telemetry Telemetry) *DragGestureCommand {
	return &DragGestureCommand{tracker: tracker, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DragGestureInput] = (*DragGestureCommand)(nil)

// Execute routes the action. Events that do not fit the tracker state are ignored.
func (c *DragGestureCommand) Execute(ctx context.Context, msg DragGestureInput) error {
	if c.tracker == nil {
		return errors.New("drag command requires tracker")
	}
	switch msg.Action {
	case DragStart:
		c.tracker.Start(msg.WidgetID)
	case DragHover:
		c.tracker.Hover(msg.WidgetID)
	case DragDrop:
		moved, err := c.tracker.Drop(ctx)
		if err != nil {
			return err
		}
		if moved {
			c.telemetry.Record(ctx, "dashboard.command.drop", nil)
		}
	case DragEnd:
		c.tracker.End()
	default:
		return fmt.Errorf("drag command: unknown action %q", msg.Action)
	}
	return nil
}
