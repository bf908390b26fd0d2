package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// Ensure ModuleRegistry implements the interface.
var _ driving.ModuleService = (*ModuleRegistry)(nil)

// ModuleRegistry resolves source identifiers to modules, installs them on
// first use, and keeps installed modules up to date.
type ModuleRegistry struct {
	repo  driven.ModuleRepository
	cache driven.ModuleCache

	// installs collapses concurrent installs of one module in this process.
	installs singleflight.Group

	mu    sync.Mutex
	index *domain.RepositoryIndex
}

// NewModuleRegistry creates a registry over a repository and a local cache.
func NewModuleRegistry(repo driven.ModuleRepository, cache driven.ModuleCache) *ModuleRegistry {
	return &ModuleRegistry{
		repo:  repo,
		cache: cache,
	}
}

// Resolve looks a source identifier up in the repository index.
//
// A module that is installed locally stays resolvable when the repository
// cannot be reached or no longer lists it. Anything else is ErrUnknownModule.
func (r *ModuleRegistry) Resolve(ctx context.Context, sourceID string) (*domain.SourceModule, error) {
	installed, err := r.installed(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	idx, idxErr := r.loadIndex(ctx, false)
	if idxErr == nil {
		if info, ok := idx.Find(sourceID); ok {
			return toSourceModule(info, installed), nil
		}
	}

	if installed != nil {
		if idxErr != nil {
			logger.Warn("Repository unavailable, using installed module %s %s: %v", sourceID, installed.Version, idxErr)
		}
		return toSourceModule(domain.ModuleInfo{
			ID:      installed.ID,
			Name:    installed.Manifest.Name,
			Version: installed.Version,
		}, installed), nil
	}

	if idxErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnknownModule, sourceID, idxErr)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownModule, sourceID)
}

// EnsureInstalled installs the module if it is not present locally.
// Installation never reports progress interactively.
func (r *ModuleRegistry) EnsureInstalled(ctx context.Context, module *domain.SourceModule) error {
	if module.Installed {
		return nil
	}

	info := domain.ModuleInfo{ID: module.ID, Name: module.Name, Version: module.Version}
	_, err, _ := r.installs.Do(module.ID, func() (any, error) {
		return nil, r.install(ctx, info, driven.NoopProgress{})
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrUnknownModule, module.ID, err)
	}

	module.Installed = true
	module.InstalledVersion = module.Version
	return nil
}

// Manifest returns the manifest of an installed module.
func (r *ModuleRegistry) Manifest(ctx context.Context, sourceID string) (*domain.ModuleManifest, error) {
	installed, err := r.cache.Get(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not installed", domain.ErrUnknownModule, sourceID)
		}
		return nil, fmt.Errorf("read module cache: %w", err)
	}
	manifest := installed.Manifest
	return &manifest, nil
}

// UpdateAll refreshes every installed module from the repository.
//
// On failure the local data directory is wiped and the update retried
// once; a second failure is returned. A wiped cache has nothing
// installed, so modules are reinstalled on their next use.
func (r *ModuleRegistry) UpdateAll(ctx context.Context) error {
	err := r.update(ctx)
	if err == nil {
		return nil
	}

	logger.Warn("Module update failed, resetting %s: %v", r.cache.Dir(), err)
	if resetErr := r.cache.Reset(ctx); resetErr != nil {
		return fmt.Errorf("reset module cache after update failure (%w): %w", err, resetErr)
	}

	if err := r.update(ctx); err != nil {
		return fmt.Errorf("update modules after cache reset: %w", err)
	}
	return nil
}

// Test verifies the module cache is usable.
func (r *ModuleRegistry) Test(ctx context.Context) error {
	if r.cache == nil {
		return fmt.Errorf("module cache not configured")
	}
	if err := r.cache.Ping(ctx); err != nil {
		return fmt.Errorf("module cache at %s is unusable: %w", r.cache.Dir(), err)
	}
	return nil
}

// List returns the published modules with their install state, sorted by id.
func (r *ModuleRegistry) List(ctx context.Context) ([]domain.SourceModule, error) {
	idx, err := r.loadIndex(ctx, false)
	if err != nil {
		return nil, err
	}

	installed, err := r.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed modules: %w", err)
	}
	byID := make(map[string]*domain.InstalledModule, len(installed))
	for i := range installed {
		byID[installed[i].ID] = &installed[i]
	}

	modules := make([]domain.SourceModule, 0, len(idx.Modules))
	for _, info := range idx.Modules {
		modules = append(modules, *toSourceModule(info, byID[info.ID]))
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

func (r *ModuleRegistry) update(ctx context.Context) error {
	idx, err := r.loadIndex(ctx, true)
	if err != nil {
		return err
	}

	installed, err := r.cache.List(ctx)
	if err != nil {
		return fmt.Errorf("list installed modules: %w", err)
	}

	for _, m := range installed {
		info, ok := idx.Find(m.ID)
		if !ok {
			logger.Warn("Module %s is no longer published by %s, keeping %s", m.ID, r.repo.Location(), m.Version)
			continue
		}
		if info.Version == m.Version {
			continue
		}
		logger.Info("Updating module %s from %s to %s", m.ID, m.Version, info.Version)
		if err := r.install(ctx, info, driven.NoopProgress{}); err != nil {
			return fmt.Errorf("update %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *ModuleRegistry) install(ctx context.Context, info domain.ModuleInfo, progress driven.ProgressSink) error {
	progress.Progress(0, 2, "downloading "+info.ID)
	manifest, err := r.repo.Manifest(ctx, info)
	if err != nil {
		return fmt.Errorf("download manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return err
	}
	if manifest.Version == "" {
		manifest.Version = info.Version
	}

	progress.Progress(1, 2, "installing "+info.ID)
	if err := r.cache.Install(ctx, *manifest); err != nil {
		return fmt.Errorf("install manifest: %w", err)
	}
	progress.Progress(2, 2, "installed "+info.ID)

	logger.Info("Installed module %s %s", manifest.ID, manifest.Version)
	return nil
}

func (r *ModuleRegistry) installed(ctx context.Context, id string) (*domain.InstalledModule, error) {
	m, err := r.cache.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read module cache: %w", err)
	}
	return m, nil
}

func (r *ModuleRegistry) loadIndex(ctx context.Context, refresh bool) (*domain.RepositoryIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil && !refresh {
		return r.index, nil
	}
	idx, err := r.repo.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRepositoryUnavailable, r.repo.Location(), err)
	}
	r.index = idx
	return idx, nil
}

func toSourceModule(info domain.ModuleInfo, installed *domain.InstalledModule) *domain.SourceModule {
	m := &domain.SourceModule{
		ID:      info.ID,
		Name:    info.Name,
		Version: info.Version,
	}
	if installed != nil {
		m.Installed = true
		m.InstalledVersion = installed.Version
	}
	return m
}
