package dashboard

const (
	minColSpan = 1
	maxColSpan = 4
	minRowSpan = 1
	// maxRowSpan bounds the layout settings form; rendering only enforces minRowSpan.
	maxRowSpan = 10
)

func indexOf(widgets []WidgetConfig, id string) int {
	for i, w := range widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// moveWidget removes the dragged widget and reinserts it at the index the
// target held before removal. Returns false when nothing moved.
func moveWidget(widgets []WidgetConfig, draggedID, targetID string) ([]WidgetConfig, bool) {
	if draggedID == targetID {
		return widgets, false
	}
	from := indexOf(widgets, draggedID)
	to := indexOf(widgets, targetID)
	if from == -1 || to == -1 {
		return widgets, false
	}
	dragged := widgets[from]
	result := make([]WidgetConfig, 0, len(widgets))
	result = append(result, widgets[:from]...)
	result = append(result, widgets[from+1:]...)
	result = append(result[:to], append([]WidgetConfig{dragged}, result[to:]...)...)
	return result, true
}

// applyOrder puts the listed ids first in the given order; unknown ids are
// skipped and unlisted widgets keep their relative order at the end.
func applyOrder(widgets []WidgetConfig, order []string) []WidgetConfig {
	if len(order) == 0 {
		return widgets
	}
	index := make(map[string]WidgetConfig, len(widgets))
	for _, w := range widgets {
		index[w.ID] = w
	}
	result := make([]WidgetConfig, 0, len(widgets))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, dup := seen[id]; dup {
			continue
		}
		if w, ok := index[id]; ok {
			result = append(result, w)
			seen[id] = struct{}{}
		}
	}
	for _, w := range widgets {
		if _, ok := seen[w.ID]; !ok {
			result = append(result, w)
		}
	}
	return result
}

func widgetOrder(widgets []WidgetConfig) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

// clampSpan bounds a span for display: colSpan to [1,4], rowSpan to at least 1.
func clampSpan(s Span) Span {
	if s.ColSpan < minColSpan {
		s.ColSpan = minColSpan
	}
	if s.ColSpan > maxColSpan {
		s.ColSpan = maxColSpan
	}
	if s.RowSpan < minRowSpan {
		s.RowSpan = minRowSpan
	}
	return s
}
