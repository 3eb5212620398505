package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// WidgetsInput requests the placed widgets. An empty WidgetID lists all of them.
type WidgetsInput struct {
	WidgetID string
}

type widgetService interface {
	Widgets(ctx context.Context) ([]dashboard.WidgetConfig, error)
}

// WidgetsQuery fetches widgets in render order.
type WidgetsQuery struct {
	service widgetService
}

// NewWidgetsQuery builds the query.
func NewWidgetsQuery(service widgetService) *WidgetsQuery {
	return &WidgetsQuery{service: service}
}

var _ gocommand.Querier[WidgetsInput, []dashboard.WidgetConfig] = (*WidgetsQuery)(nil)

// Query lists widgets, or the single widget named by input.WidgetID.
func (q *WidgetsQuery) Query(ctx context.Context, input WidgetsInput) ([]dashboard.WidgetConfig, error) {
	widgets, err := q.service.Widgets(ctx)
	if err != nil {
		return nil, err
	}
	if input.WidgetID == "" {
		return widgets, nil
	}
	for _, w := range widgets {
		if w.ID == input.WidgetID {
			return []dashboard.WidgetConfig{w}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, input.WidgetID)
}

// LibraryInput requests the template catalog.
type LibraryInput struct{}

type libraryService interface {
	Library(ctx context.Context) ([]dashboard.PredefinedWidget, error)
}

// LibraryQuery lists predefined templates.
type LibraryQuery struct {
	service libraryService
}

// NewLibraryQuery builds the query.
func NewLibraryQuery(service libraryService) *LibraryQuery {
	return &LibraryQuery{service: service}
}

var _ gocommand.Querier[LibraryInput, []dashboard.PredefinedWidget] = (*LibraryQuery)(nil)

// Query returns the catalog.
func (q *LibraryQuery) Query(ctx context.Context, _ LibraryInput) ([]dashboard.PredefinedWidget, error) {
	return q.service.Library(ctx)
}

// ChartTypesInput requests the chart type menu.
type ChartTypesInput struct{}

type chartTypeService interface {
	ChartTypes(ctx context.Context) ([]dashboard.ChartTypeOption, error)
}

// ChartTypesQuery lists the chart type override options.
type ChartTypesQuery struct {
	service chartTypeService
}

// NewChartTypesQuery builds the query.
func NewChartTypesQuery(service chartTypeService) *ChartTypesQuery {
	return &ChartTypesQuery{service: service}
}

var _ gocommand.Querier[ChartTypesInput, []dashboard.ChartTypeOption] = (*ChartTypesQuery)(nil)

// Query returns the menu entries.
func (q *ChartTypesQuery) Query(ctx context.Context, _ ChartTypesInput) ([]dashboard.ChartTypeOption, error) {
	return q.service.ChartTypes(ctx)
}
