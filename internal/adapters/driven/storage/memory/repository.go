package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.ModuleRepository = (*Repository)(nil)

// Repository is an in-memory module repository. It publishes the manifests
// it was given and can be told to fail.
type Repository struct {
	mu        sync.Mutex
	manifests map[string]domain.ModuleManifest
	indexErr  error
	failures  int

	// IndexCalls and ManifestCalls count reads.
	IndexCalls    int
	ManifestCalls int
}

// NewRepository creates a repository publishing the given manifests.
func NewRepository(manifests ...domain.ModuleManifest) *Repository {
	r := &Repository{manifests: make(map[string]domain.ModuleManifest)}
	for _, m := range manifests {
		r.manifests[m.ID] = m
	}
	return r
}

// Publish adds or replaces a manifest.
func (r *Repository) Publish(m domain.ModuleManifest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifests[m.ID] = m
}

// FailIndex makes the next n index reads return err. n < 0 fails forever.
func (r *Repository) FailIndex(err error, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexErr = err
	r.failures = n
}

// Location implements driven.ModuleRepository.
func (r *Repository) Location() string {
	return "memory"
}

// Index lists the published manifests.
func (r *Repository) Index(_ context.Context) (*domain.RepositoryIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IndexCalls++

	if r.indexErr != nil && r.failures != 0 {
		if r.failures > 0 {
			r.failures--
		}
		return nil, r.indexErr
	}

	idx := &domain.RepositoryIndex{}
	for _, m := range r.manifests {
		idx.Modules = append(idx.Modules, domain.ModuleInfo{ID: m.ID, Name: m.Name, Version: m.Version})
	}
	return idx, nil
}

// Manifest returns a published manifest.
func (r *Repository) Manifest(_ context.Context, info domain.ModuleInfo) (*domain.ModuleManifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ManifestCalls++

	m, ok := r.manifests[info.ID]
	if !ok {
		return nil, fmt.Errorf("manifest %s: %w", info.ID, domain.ErrNotFound)
	}
	return &m, nil
}
