package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

func writeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.toml"), []byte(`
[[modules]]
id = "demo"
name = "Demo bank"
version = "1.0"
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "modules", "demo.toml"), []byte(`
driver = "demo"
`), 0600))
	return root
}

func TestNew_RequiresDirectory(t *testing.T) {
	_, err := New("")

	_, ok := domain.IsConfigError(err)
	assert.True(t, ok)
}

func TestRepository_IndexAndManifest(t *testing.T) {
	repo, err := New(writeRepo(t))
	require.NoError(t, err)
	ctx := context.Background()

	idx, err := repo.Index(ctx)
	require.NoError(t, err)
	info, ok := idx.Find("demo")
	require.True(t, ok)

	m, err := repo.Manifest(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Driver)
	assert.Equal(t, "1.0", m.Version)
	assert.True(t, filepath.IsAbs(repo.Location()))
}

func TestRepository_MissingManifest(t *testing.T) {
	repo, err := New(writeRepo(t))
	require.NoError(t, err)

	_, err = repo.Manifest(context.Background(), domain.ModuleInfo{ID: "absent"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_RejectsPathInID(t *testing.T) {
	repo, err := New(writeRepo(t))
	require.NoError(t, err)

	_, err = repo.Manifest(context.Background(), domain.ModuleInfo{ID: "../../etc/passwd"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepository_MissingIndex(t *testing.T) {
	repo, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = repo.Index(context.Background())

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepository_CancelledContext(t *testing.T) {
	repo, err := New(writeRepo(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.Index(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
