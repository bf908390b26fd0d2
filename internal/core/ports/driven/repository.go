package driven

import (
	"context"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// ModuleRepository publishes source modules: an index of what is available
// and the manifest of each module.
type ModuleRepository interface {
	// Location describes where the repository lives, for diagnostics.
	Location() string

	// Index returns the list of published modules.
	Index(ctx context.Context) (*domain.RepositoryIndex, error)

	// Manifest downloads the manifest of one module.
	// Returns ErrNotFound if the repository does not publish it.
	Manifest(ctx context.Context, info domain.ModuleInfo) (*domain.ModuleManifest, error)
}

// ProgressSink receives installation progress.
type ProgressSink interface {
	Progress(done, total int, message string)
}

// NoopProgress discards progress. Installs always run with it so that
// automation never blocks on a progress display.
type NoopProgress struct{}

// Progress implements ProgressSink.
func (NoopProgress) Progress(int, int, string) {}
