package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/finconnect/internal/connectors/demo"
	"github.com/custodia-labs/finconnect/internal/connectors/openbank"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.BackendFactory = (*Factory)(nil)

// Factory creates backends by driver name.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]driven.BackendBuilder
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[string]driven.BackendBuilder),
	}
}

// NewDefaultFactory creates a factory with the built-in drivers registered.
func NewDefaultFactory() *Factory {
	f := NewFactory()
	f.Register(demo.Driver, demo.Build)
	f.Register(openbank.Driver, openbank.Build)
	return f
}

// Register adds a builder for the given driver, replacing any previous one.
func (f *Factory) Register(driver string, builder driven.BackendBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[driver] = builder
}

// Create builds a backend for the manifest's driver.
func (f *Factory) Create(ctx context.Context, cfg driven.BackendConfig) (driven.Backend, error) {
	f.mu.RLock()
	builder, ok := f.builders[cfg.Manifest.Driver]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: driver %q of module %s", domain.ErrUnsupportedType, cfg.Manifest.Driver, cfg.Manifest.ID)
	}
	return builder(ctx, cfg)
}

// SupportedDrivers returns the registered drivers, sorted.
func (f *Factory) SupportedDrivers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	drivers := make([]string, 0, len(f.builders))
	for d := range f.builders {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}
