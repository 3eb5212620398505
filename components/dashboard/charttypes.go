package dashboard

import (
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

var chartTypeOrder = []ChartType{
	ChartCard,
	ChartBar,
	ChartHorizontalBar,
	ChartLine,
	ChartPie,
	ChartDonut,
	ChartArea,
	ChartStackedBar,
	ChartRadar,
	ChartFunnel,
	ChartRadialBar,
}

// ChartTypeOption is one entry of the chart type override menu.
type ChartTypeOption struct {
	Type  ChartType `json:"type"`
	Label string    `json:"label"`
}

// ChartTypes lists every supported chart type in menu order.
func ChartTypes() []ChartTypeOption {
	out := make([]ChartTypeOption, len(chartTypeOrder))
	for i, ct := range chartTypeOrder {
		out[i] = ChartTypeOption{Type: ct, Label: ct.Label()}
	}
	return out
}

// Valid reports whether the chart type is part of the catalog.
func (c ChartType) Valid() bool {
	for _, ct := range chartTypeOrder {
		if ct == c {
			return true
		}
	}
	return false
}

// Label is the display name ("Stacked Bar", "Pie").
func (c ChartType) Label() string {
	return strcase.ToCase(string(c), strcase.TitleCase, ' ')
}

// ParseChartType matches a tag case-insensitively against the catalog.
func ParseChartType(raw string) (ChartType, error) {
	raw = strings.TrimSpace(raw)
	for _, ct := range chartTypeOrder {
		if strings.EqualFold(string(ct), raw) {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartType, raw)
}

// DefaultSpan is the span a freshly created widget of the given type gets.
func DefaultSpan(c ChartType) Span {
	switch c {
	case ChartCard, ChartPie, ChartDonut:
		return Span{ColSpan: 1, RowSpan: 1}
	case ChartBar, ChartHorizontalBar:
		return Span{ColSpan: 2, RowSpan: 1}
	case ChartLine, ChartArea, ChartStackedBar, ChartRadar, ChartFunnel, ChartRadialBar:
		return Span{ColSpan: 2, RowSpan: 2}
	default:
		return Span{ColSpan: 1, RowSpan: 1}
	}
}
