// Package repository holds the layout shared by the module repository
// adapters. A repository is a tree of TOML files:
//
//	index.toml            [[modules]] entries: id, name, version, description
//	modules/<id>.toml     the manifest of one module
//
// The file, http and github sub-packages read that tree from a local
// directory, an HTTP(S) base URL, or a GitHub repository.
package repository

import (
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// IndexFile is the path of the index inside a repository.
const IndexFile = "index.toml"

// ManifestPath returns the path of a module manifest inside a repository.
func ManifestPath(id string) string {
	return path.Join("modules", id+".toml")
}

// ValidID reports whether id is usable as a path element.
func ValidID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// ParseIndex decodes an index. Entries without an id are dropped.
func ParseIndex(data []byte) (*domain.RepositoryIndex, error) {
	var idx domain.RepositoryIndex
	if err := toml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", IndexFile, err)
	}

	modules := idx.Modules[:0]
	for _, m := range idx.Modules {
		if ValidID(m.ID) {
			modules = append(modules, m)
		}
	}
	idx.Modules = modules
	return &idx, nil
}

// ParseManifest decodes the manifest published for info. The manifest
// must describe the module it was requested for; a missing version is
// taken from the index entry.
func ParseManifest(data []byte, info domain.ModuleInfo) (*domain.ModuleManifest, error) {
	var m domain.ModuleManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest of %s: %w", info.ID, err)
	}
	if m.ID == "" {
		m.ID = info.ID
	}
	if m.ID != info.ID {
		return nil, fmt.Errorf("manifest of %s describes module %s", info.ID, m.ID)
	}
	if m.Version == "" {
		m.Version = info.Version
	}
	if m.Name == "" {
		m.Name = info.Name
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
