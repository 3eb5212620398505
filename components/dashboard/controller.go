package dashboard

import (
	"context"
	"errors"
	"io"
)

const defaultPageTemplate = "dashboard"

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// PageSource supplies everything the dashboard page shows.
type PageSource interface {
	RenderWidgets(ctx context.Context) ([]RenderedWidget, error)
	Library(ctx context.Context) ([]PredefinedWidget, error)
	ChartTypes(ctx context.Context) ([]ChartTypeOption, error)
}

// ControllerOptions configures the page controller.
type ControllerOptions struct {
	Service  PageSource
	Renderer Renderer
	Template string
	Title    string
	// APIBase is the path prefix the page script calls (e.g. /dashboard/api).
	APIBase string
}

// Controller builds the dashboard page view model and renders it.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the page source and renderer.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	if opts.Title == "" {
		opts.Title = "AI Dashboard"
	}
	return &Controller{opts: opts}
}

// Page is the dashboard view model.
type Page struct {
	Title      string             `json:"title"`
	APIBase    string             `json:"api_base"`
	Widgets    []RenderedWidget   `json:"widgets"`
	Library    []PredefinedWidget `json:"library"`
	ChartTypes []ChartTypeOption  `json:"chart_types"`
}

// Page resolves the widgets (with visuals), library and chart type menu.
func (c *Controller) Page(ctx context.Context) (Page, error) {
	if c.opts.Service == nil {
		return Page{}, errors.New("dashboard: controller requires a page source")
	}
	widgets, err := c.opts.Service.RenderWidgets(ctx)
	if err != nil {
		return Page{}, err
	}
	library, err := c.opts.Service.Library(ctx)
	if err != nil {
		return Page{}, err
	}
	chartTypes, err := c.opts.Service.ChartTypes(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Title:      c.opts.Title,
		APIBase:    c.opts.APIBase,
		Widgets:    widgets,
		Library:    library,
		ChartTypes: chartTypes,
	}, nil
}

// RenderTemplate writes the dashboard HTML to out.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller requires a renderer")
	}
	page, err := c.Page(ctx)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, map[string]any{
		"title":       page.Title,
		"api_base":    page.APIBase,
		"widgets":     page.Widgets,
		"library":     page.Library,
		"chart_types": page.ChartTypes,
	}, out)
	return err
}
