package goadmin

import (
	"context"
	"errors"

	dashboardpkg "github.com/goliatone/go-aidash/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config plugs an assembled dashboard into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Dashboard       *dashboardpkg.Dashboard
	DefaultMenuItem MenuItem
	// SeedTemplates are placed on an empty grid during Bootstrap. Nil skips
	// seeding; an empty non-nil slice uses the library defaults.
	SeedTemplates []string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus and widgets.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Dashboard == nil {
		return nil, errors.New("goadmin: dashboard is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "AI Dashboard"
	}
	if cfg.DefaultMenuItem.Route == "" {
		if cfg.Dashboard != nil {
			cfg.DefaultMenuItem.Route = cfg.Dashboard.BasePath
		} else {
			cfg.DefaultMenuItem.Route = dashboardpkg.DefaultBasePath
		}
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "chart-bar"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Dashboard {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Dashboard
}

// Bootstrap seeds the menu entry and, when configured, the starter widgets.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard {
		return nil
	}
	if a.cfg.MenuBuilder != nil {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
			return err
		}
	}
	if a.cfg.SeedTemplates == nil {
		return nil
	}
	return a.cfg.Dashboard.Seed(ctx, a.cfg.SeedTemplates...)
}
