package driven

import (
	"context"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// ModuleCache is the on-disk store of installed modules, shared by every
// invocation that uses the same data directory.
type ModuleCache interface {
	// Get returns an installed module.
	// Returns ErrNotFound if the module is not installed.
	Get(ctx context.Context, id string) (*domain.InstalledModule, error)

	// Install records a module and its manifest, replacing any previous version.
	Install(ctx context.Context, manifest domain.ModuleManifest) error

	// List returns all installed modules.
	List(ctx context.Context) ([]domain.InstalledModule, error)

	// Reset wipes the data directory and recreates an empty cache.
	Reset(ctx context.Context) error

	// Ping checks the cache is readable and writable.
	Ping(ctx context.Context) error

	// Dir returns the data directory backing the cache.
	Dir() string

	// Close releases resources.
	Close() error
}
