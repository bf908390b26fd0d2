package domain

import (
	"strings"
	"time"
)

// ModuleInfo is one entry of a repository index.
type ModuleInfo struct {
	// ID is the source identifier (e.g. "demo", "examplebank").
	ID string `toml:"id"`

	// Name is the human-readable name.
	Name string `toml:"name"`

	// Version is the version published by the repository.
	Version string `toml:"version"`

	// Description is a short summary of the source.
	Description string `toml:"description,omitempty"`
}

// RepositoryIndex lists the modules a repository publishes.
type RepositoryIndex struct {
	Modules []ModuleInfo `toml:"modules"`
}

// Find returns the entry for the given id.
func (i *RepositoryIndex) Find(id string) (ModuleInfo, bool) {
	for _, m := range i.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return ModuleInfo{}, false
}

// ModuleManifest is the installable payload of a module: it binds a source
// to a compiled driver and carries the driver parameters and the custom
// fields the source requires from callers.
type ModuleManifest struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Version string `toml:"version"`

	// Driver names the backend implementation (e.g. "demo", "openbank").
	Driver string `toml:"driver"`

	// Params configures the driver (e.g. base_url).
	Params map[string]string `toml:"params,omitempty"`

	// Fields lists the custom credential fields of this source.
	Fields []ConfigKey `toml:"fields,omitempty"`
}

// Validate checks the manifest is usable.
func (m *ModuleManifest) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return NewConfigError("id", "manifest has no id")
	}
	if strings.TrimSpace(m.Driver) == "" {
		return NewConfigError("driver", "manifest %s has no driver", m.ID)
	}
	return nil
}

// InstalledModule is a module present in the local module cache.
type InstalledModule struct {
	ID          string
	Version     string
	Manifest    ModuleManifest
	InstalledAt time.Time
}

// SourceModule identifies a pluggable backend as seen by the registry.
type SourceModule struct {
	// ID is the source identifier.
	ID string

	// Name is the human-readable name.
	Name string

	// Version is the version available in the repository index.
	Version string

	// Installed reports whether the module is present locally.
	Installed bool

	// InstalledVersion is the locally installed version, empty if not installed.
	InstalledVersion string
}

// NeedsUpdate returns true if an installed module lags behind the index.
func (m *SourceModule) NeedsUpdate() bool {
	return m.Installed && m.InstalledVersion != m.Version
}

// ConfigKey describes a custom field a source requires.
type ConfigKey struct {
	// Key is the field name.
	Key string `toml:"key"`
	// Label is the human-readable label for UI display.
	Label string `toml:"label,omitempty"`
	// Description explains what this field is for.
	Description string `toml:"description,omitempty"`
	// Default is used when the caller does not provide the field.
	Default string `toml:"default,omitempty"`
	// Required indicates whether this field must be provided.
	Required bool `toml:"required,omitempty"`
	// Secret indicates whether this field should be masked in UI (e.g., tokens).
	Secret bool `toml:"secret,omitempty"`
	// Choices restricts the accepted values, when set.
	Choices []string `toml:"choices,omitempty"`
}
