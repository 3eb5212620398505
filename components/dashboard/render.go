package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"

	// NoDataText is shown for widgets without rows or columns.
	NoDataText = "No data available"
	// UnknownChartText is shown for chart types the dispatcher does not know.
	UnknownChartText = "Unknown chart type"

	radialTrackColor = "rgba(255, 255, 255, 0.08)"

	donutGapColor = "#ffffff"
	donutGapWidth = 3
)

// Palette colors series (or slices) by index, cycling after eight entries.
var Palette = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

// PaletteColor returns the color for series index i.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// VisualKind distinguishes real charts from the fixed placeholders.
type VisualKind string

const (
	VisualChart   VisualKind = "chart"
	VisualCard    VisualKind = "card"
	VisualNoData  VisualKind = "no_data"
	VisualUnknown VisualKind = "unknown"
)

// Visual is the rendered form of a widget.
type Visual struct {
	Kind      VisualKind `json:"kind"`
	ChartType ChartType  `json:"chart_type"`
	HTML      string     `json:"html,omitempty"`
	Text      string     `json:"text,omitempty"`
}

// Placeholder reports whether the visual is one of the fixed fallbacks.
func (v Visual) Placeholder() bool {
	return v.Kind == VisualNoData || v.Kind == VisualUnknown
}

// Dispatcher maps a chart type plus tabular data to go-echarts markup.
type Dispatcher struct {
	cache      RenderCache
	theme      string
	height     string
	assetsHost string
}

// DispatcherOption customizes dispatcher behavior.
type DispatcherOption func(*Dispatcher)

// WithRenderCache memoizes chart markup.
func WithRenderCache(cache RenderCache) DispatcherOption {
	return func(d *Dispatcher) {
		d.cache = cache
	}
}

// WithChartTheme sets the ECharts theme (defaults to Westeros).
func WithChartTheme(theme string) DispatcherOption {
	return func(d *Dispatcher) {
		if theme != "" {
			d.theme = theme
		}
	}
}

// WithChartHeight overrides the chart container height.
func WithChartHeight(height string) DispatcherOption {
	return func(d *Dispatcher) {
		if height != "" {
			d.height = height
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) DispatcherOption {
	return func(d *Dispatcher) {
		d.assetsHost = host
	}
}

// NewDispatcher builds a dispatcher without a cache unless one is supplied.
func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Render draws rows as chartType. Empty data and unknown types produce
// placeholders; errors only come from the chart library.
func (d *Dispatcher) Render(chartType ChartType, rows []Row, columns []string) (Visual, error) {
	if len(rows) == 0 || len(columns) == 0 {
		return Visual{Kind: VisualNoData, ChartType: chartType, Text: NoDataText}, nil
	}
	if chartType == ChartCard {
		return Visual{Kind: VisualCard, ChartType: chartType, Text: FormatValue(rows[0][columns[0]])}, nil
	}
	if !chartType.Valid() {
		return Visual{Kind: VisualUnknown, ChartType: chartType, Text: UnknownChartText}, nil
	}

	renderFn := func() (string, error) {
		return d.render(chartType, rows, columns)
	}
	var (
		html string
		err  error
	)
	if d.cache != nil {
		html, err = d.cache.GetOrRender(renderKey(chartType, rows, columns), renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return Visual{}, fmt.Errorf("dashboard: render %s: %w", chartType, err)
	}
	return Visual{Kind: VisualChart, ChartType: chartType, HTML: html}, nil
}

func (d *Dispatcher) render(chartType ChartType, rows []Row, columns []string) (string, error) {
	switch chartType {
	case ChartBar:
		return d.renderBar(rows, columns, false, false)
	case ChartHorizontalBar:
		return d.renderBar(rows, columns, false, true)
	case ChartStackedBar:
		return d.renderBar(rows, columns, true, false)
	case ChartLine:
		return d.renderLine(rows, columns, false)
	case ChartArea:
		return d.renderLine(rows, columns, true)
	case ChartPie:
		return d.renderPie(rows, columns, false)
	case ChartDonut:
		return d.renderPie(rows, columns, true)
	case ChartRadar:
		return d.renderRadar(rows, columns)
	case ChartFunnel:
		return d.renderFunnel(rows, columns)
	case ChartRadialBar:
		return d.renderRadialBar(rows, columns)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", chartType)
	}
}

func (d *Dispatcher) renderBar(rows []Row, columns []string, stacked, horizontal bool) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(d.globalChartOptions()...)
	bar.SetXAxis(categoryLabels(rows, columns[0]))
	for i, key := range columns[1:] {
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: PaletteColor(i)}),
		}
		if stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(key, toBarData(rows, columns[0], key), seriesOpts...)
	}
	if horizontal {
		bar.XYReversal()
	}
	return renderChart(bar)
}

func (d *Dispatcher) renderLine(rows []Row, columns []string, filled bool) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(d.globalChartOptions()...)
	line.SetXAxis(categoryLabels(rows, columns[0]))
	for i, key := range columns[1:] {
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: PaletteColor(i)}),
		}
		if filled {
			seriesOpts = append(seriesOpts,
				charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
				charts.WithAreaStyleOpts(opts.AreaStyle{}),
			)
		}
		line.AddSeries(key, toLineData(rows, columns[0], key), seriesOpts...)
	}
	return renderChart(line)
}

func (d *Dispatcher) renderPie(rows []Row, columns []string, donut bool) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(d.globalChartOptions()...)
	valueKey := seriesKey(columns, 1)
	radius := []string{"0%", "60%"}
	data := toPieData(rows, columns[0], valueKey)
	if donut {
		radius = []string{"45%", "60%"}
		for _, slice := range data {
			slice.ItemStyle.BorderColor = donutGapColor
			slice.ItemStyle.BorderWidth = donutGapWidth
		}
	}
	pie.AddSeries(valueKey, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: radius}),
	)
	return renderChart(pie)
}

func (d *Dispatcher) renderRadar(rows []Row, columns []string) (string, error) {
	radar := charts.NewRadar()
	indicators := make([]*opts.Indicator, len(rows))
	for i, label := range categoryLabels(rows, columns[0]) {
		indicators[i] = &opts.Indicator{Name: label}
	}
	global := append(d.globalChartOptions(),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	radar.SetGlobalOptions(global...)
	for i, key := range columns[1:] {
		values := make([]float64, len(rows))
		for j, row := range rows {
			values[j] = float64Value(row[key])
		}
		radar.AddSeries(key, []opts.RadarData{{Name: key, Value: values}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: PaletteColor(i)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}),
		)
	}
	return renderChart(radar)
}

func (d *Dispatcher) renderFunnel(rows []Row, columns []string) (string, error) {
	funnel := charts.NewFunnel()
	funnel.SetGlobalOptions(d.globalChartOptions()...)
	valueKey := seriesKey(columns, 1)
	data := make([]opts.FunnelData, len(rows))
	for i, row := range rows {
		data[i] = opts.FunnelData{
			Name:  labelText(row[columns[0]]),
			Value: float64Value(row[valueKey]),
		}
	}
	funnel.AddSeries(valueKey, data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	return renderChart(funnel)
}

// renderRadialBar draws one ring per row; the colored arc is the row value
// and the track is the remainder up to the largest value (or 100).
func (d *Dispatcher) renderRadialBar(rows []Row, columns []string) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(d.globalChartOptions()...)
	valueKey := seriesKey(columns, 1)
	ceiling := 100.0
	for _, row := range rows {
		ceiling = math.Max(ceiling, float64Value(row[valueKey]))
	}
	const innerStart, outerEnd = 20.0, 80.0
	step := (outerEnd - innerStart) / float64(len(rows))
	for i, row := range rows {
		value := float64Value(row[valueKey])
		label := labelText(row[columns[0]])
		inner := innerStart + float64(i)*step
		outer := inner + step*0.7
		pie.AddSeries(label, []opts.PieData{
			{Name: label, Value: value, ItemStyle: &opts.ItemStyle{Color: PaletteColor(i)}},
			{Name: "", Value: math.Max(ceiling-value, 0), ItemStyle: &opts.ItemStyle{Color: radialTrackColor}},
		},
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{percent(inner), percent(outer)}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Dispatcher) globalChartOptions() []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  d.theme,
		Width:  "100%",
		Height: d.height,
	}
	if d.assetsHost != "" {
		initOpts.AssetsHost = d.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func categoryLabels(rows []Row, key string) []string {
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = labelText(row[key])
	}
	return labels
}

func seriesKey(columns []string, idx int) string {
	if idx < len(columns) {
		return columns[idx]
	}
	return ""
}

func toBarData(rows []Row, labelKey, valueKey string) []opts.BarData {
	data := make([]opts.BarData, len(rows))
	for i, row := range rows {
		data[i] = opts.BarData{
			Name:  labelText(row[labelKey]),
			Value: float64Value(row[valueKey]),
		}
	}
	return data
}

func toLineData(rows []Row, labelKey, valueKey string) []opts.LineData {
	data := make([]opts.LineData, len(rows))
	for i, row := range rows {
		data[i] = opts.LineData{
			Name:  labelText(row[labelKey]),
			Value: float64Value(row[valueKey]),
		}
	}
	return data
}

func toPieData(rows []Row, labelKey, valueKey string) []opts.PieData {
	data := make([]opts.PieData, len(rows))
	for i, row := range rows {
		name := labelText(row[labelKey])
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:      name,
			Value:     float64Value(row[valueKey]),
			ItemStyle: &opts.ItemStyle{Color: PaletteColor(i)},
		}
	}
	return data
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatValue renders a cell for display; numbers are thousands-grouped.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return humanize.Comma(int64(val))
	case int32:
		return humanize.Comma(int64(val))
	case int64:
		return humanize.Comma(val)
	case float32:
		return humanize.Commaf(float64(val))
	case float64:
		return humanize.Commaf(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return humanize.Commaf(f)
		}
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// labelText renders a category cell as-is, so years and codes are not grouped.
func labelText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

func float64Value(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return 0
}
