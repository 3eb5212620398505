package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-aidash/components/dashboard"
)

// ErrWidgetNotFound is returned when a single-widget lookup misses.
var ErrWidgetNotFound = errors.New("queries: widget not found")

// LayoutInput requests the rendered grid.
type LayoutInput struct{}

type layoutService interface {
	RenderWidgets(ctx context.Context) ([]dashboard.RenderedWidget, error)
}

// LayoutQuery renders every widget with its display span and visual.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, []dashboard.RenderedWidget] = (*LayoutQuery)(nil)

// Query renders the grid.
func (q *LayoutQuery) Query(ctx context.Context, _ LayoutInput) ([]dashboard.RenderedWidget, error) {
	return q.service.RenderWidgets(ctx)
}
