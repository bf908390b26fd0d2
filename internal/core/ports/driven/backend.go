package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// Backend is a live, authenticated handle over one source module.
// Each driver (demo, openbank, etc.) implements this interface.
//
// Sequences returned by a Backend are lazy, finite and not restartable:
// ranging over one performs the fetch, and a second range is undefined.
// A sequence reports a failure by yielding a non-nil error, after which
// the caller stops iterating.
type Backend interface {
	// Module returns the source identifier the backend was built for.
	Module() string

	// Accounts iterates the accounts visible with the session credentials.
	Accounts(ctx context.Context) iter.Seq2[domain.RawAccount, error]

	// History iterates the transactions of one account.
	// Yields domain.ErrNotImplemented when the account type has no history support.
	History(ctx context.Context, account domain.RawAccount) iter.Seq2[domain.RawTransaction, error]

	// Close releases resources.
	Close() error
}

// BackendConfig is everything a driver needs to build a Backend.
type BackendConfig struct {
	// Manifest is the installed module manifest (driver, params, fields).
	Manifest domain.ModuleManifest

	// Credentials are the session credentials, custom fields included.
	Credentials domain.CredentialBundle
}

// Param returns a driver parameter from the manifest, or fallback.
func (c BackendConfig) Param(key, fallback string) string {
	if v, ok := c.Manifest.Params[key]; ok && v != "" {
		return v
	}
	return fallback
}

// BackendBuilder creates a Backend for a driver.
// Returns a *domain.ConfigError when the configuration is unusable.
type BackendBuilder func(ctx context.Context, cfg BackendConfig) (Backend, error)

// BackendFactory creates backends from module manifests.
// It maintains a registry of drivers and their builders.
type BackendFactory interface {
	// Create returns a Backend for the manifest's driver.
	// Returns ErrUnsupportedType if the driver is unknown.
	Create(ctx context.Context, cfg BackendConfig) (Backend, error)

	// Register adds a builder for the given driver.
	Register(driver string, builder BackendBuilder)

	// SupportedDrivers returns all registered drivers.
	SupportedDrivers() []string
}
