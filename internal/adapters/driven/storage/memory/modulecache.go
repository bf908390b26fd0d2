package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Ensure ModuleCache implements the interface.
var _ driven.ModuleCache = (*ModuleCache)(nil)

// ModuleCache is an in-memory implementation of driven.ModuleCache.
type ModuleCache struct {
	mu      sync.RWMutex
	modules map[string]domain.InstalledModule
	now     func() time.Time

	// Resets counts calls to Reset.
	Resets int
}

// NewModuleCache creates a new in-memory module cache.
func NewModuleCache() *ModuleCache {
	return &ModuleCache{
		modules: make(map[string]domain.InstalledModule),
		now:     time.Now,
	}
}

// Get returns an installed module.
func (c *ModuleCache) Get(_ context.Context, id string) (*domain.InstalledModule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

// Install records a module, replacing any previous version.
func (c *ModuleCache) Install(_ context.Context, manifest domain.ModuleManifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[manifest.ID] = domain.InstalledModule{
		ID:          manifest.ID,
		Version:     manifest.Version,
		Manifest:    manifest,
		InstalledAt: c.now(),
	}
	return nil
}

// List returns all installed modules sorted by id.
func (c *ModuleCache) List(_ context.Context) ([]domain.InstalledModule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]domain.InstalledModule, 0, len(c.modules))
	for _, m := range c.modules {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Reset drops every installed module.
func (c *ModuleCache) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules = make(map[string]domain.InstalledModule)
	c.Resets++
	return nil
}

// Ping always succeeds.
func (c *ModuleCache) Ping(_ context.Context) error {
	return nil
}

// Dir returns a placeholder, the cache has no directory.
func (c *ModuleCache) Dir() string {
	return ":memory:"
}

// Close is a no-op.
func (c *ModuleCache) Close() error {
	return nil
}
