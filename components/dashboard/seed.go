package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// DefaultSeedTemplates are the library templates placed on an empty dashboard
// when seeding is requested.
var DefaultSeedTemplates = []string{"1", "2", "3", "4"}

// SeedFromLibrary adds the given library templates when the dashboard is
// empty. Existing widgets are left alone so seeding is safe to repeat.
func SeedFromLibrary(ctx context.Context, service *Service, templateIDs ...string) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed widgets")
	}
	existing, err := service.Widgets(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if len(templateIDs) == 0 {
		templateIDs = DefaultSeedTemplates
	}
	var seedErr error
	for _, id := range templateIDs {
		if _, err := service.AddFromLibrary(ctx, id, nil); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed template %s: %w", id, err))
		}
	}
	return seedErr
}
