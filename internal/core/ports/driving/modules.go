package driving

import (
	"context"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// ModuleService manages the lifecycle of source modules.
type ModuleService interface {
	// Test verifies the module cache and data directory are usable.
	Test(ctx context.Context) error

	// UpdateAll refreshes every installed module, wiping the cache and
	// retrying once on failure.
	UpdateAll(ctx context.Context) error

	// List returns the published modules with their install state.
	List(ctx context.Context) ([]domain.SourceModule, error)
}
