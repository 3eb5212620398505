package dashboard

import (
	"context"
	"sync"
)

// DragState is the phase of a drag gesture.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Reorderer applies a completed drag.
type Reorderer interface {
	Reorder(ctx context.Context, draggedID, targetID string) error
}

// DragTracker follows one drag gesture from start to drop or cancel. A new
// start always replaces the gesture in flight; other events that do not fit
// the current state are ignored.
type DragTracker struct {
	mu        sync.Mutex
	reorderer Reorderer
	state     DragState
	source    string
	target    string
}

// NewDragTracker builds an idle tracker that reorders through r.
func NewDragTracker(r Reorderer) *DragTracker {
	return &DragTracker{reorderer: r}
}

// State returns the current phase with the source and last hover target.
func (d *DragTracker) State() (DragState, string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.source, d.target
}

// Start begins dragging sourceID, dropping any gesture whose end never arrived.
func (d *DragTracker) Start(sourceID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sourceID == "" {
		return false
	}
	d.state = DragDragging
	d.source = sourceID
	d.target = ""
	return true
}

// Hover records the widget currently under the pointer; only the last one counts.
func (d *DragTracker) Hover(targetID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DragDragging {
		return false
	}
	d.target = targetID
	return true
}

// Drop finishes the gesture on the last hover target. A drop onto the source
// itself or with no target returns to idle without reordering.
func (d *DragTracker) Drop(ctx context.Context) (bool, error) {
	d.mu.Lock()
	if d.state != DragDragging {
		d.mu.Unlock()
		return false, nil
	}
	source, target := d.source, d.target
	d.reset()
	d.mu.Unlock()

	if target == "" || source == target || d.reorderer == nil {
		return false, nil
	}
	if err := d.reorderer.Reorder(ctx, source, target); err != nil {
		return false, err
	}
	return true, nil
}

// End handles a drag that ended without a drop.
func (d *DragTracker) End() {
	d.Cancel()
}

// Cancel abandons the gesture.
func (d *DragTracker) Cancel() {
	d.mu.Lock()
	d.reset()
	d.mu.Unlock()
}

func (d *DragTracker) reset() {
	d.state = DragIdle
	d.source = ""
	d.target = ""
}
