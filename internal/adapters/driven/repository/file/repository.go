// Package file reads a module repository from a local directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/repository"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.ModuleRepository = (*Repository)(nil)

// Repository is a module repository rooted at a directory.
type Repository struct {
	root string
}

// New creates a repository reading from root.
func New(root string) (*Repository, error) {
	if root == "" {
		return nil, domain.NewConfigError("repository.location", "no repository directory configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	return &Repository{root: abs}, nil
}

// Location returns the repository directory.
func (r *Repository) Location() string {
	return r.root
}

// Index reads index.toml.
func (r *Repository) Index(ctx context.Context) (*domain.RepositoryIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.root, repository.IndexFile))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return repository.ParseIndex(data)
}

// Manifest reads modules/<id>.toml.
func (r *Repository) Manifest(ctx context.Context, info domain.ModuleInfo) (*domain.ModuleManifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !repository.ValidID(info.ID) {
		return nil, fmt.Errorf("%w: module id %q", domain.ErrInvalidInput, info.ID)
	}

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(repository.ManifestPath(info.ID))))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest of %s: %w", info.ID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest of %s: %w", info.ID, err)
	}
	return repository.ParseManifest(data, info)
}
