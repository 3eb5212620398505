package commands

import (
	"context"

	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// Telemetry allows commands to emit structured events. It is the same contract
// the dashboard service uses, so a single ZapTelemetry can serve both.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// WidgetResult receives the widget a creating command produced. Widget stays
// nil when the backend had no answer; Warning carries a message for the user.
type WidgetResult struct {
	Widget  *dashboard.WidgetConfig
	Warning string
}

func (r *WidgetResult) set(w *dashboard.WidgetConfig) {
	if r != nil {
		r.Widget = w
	}
}
