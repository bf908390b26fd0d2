package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

func TestModuleCache_InstallAndGet(t *testing.T) {
	cache := NewModuleCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "demo")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, cache.Install(ctx, domain.ModuleManifest{ID: "demo", Version: "1.0", Driver: "demo"}))
	require.NoError(t, cache.Install(ctx, domain.ModuleManifest{ID: "demo", Version: "1.1", Driver: "demo"}))

	m, err := cache.Get(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "1.1", m.Version)
	assert.Equal(t, "demo", m.Manifest.Driver)
	assert.False(t, m.InstalledAt.IsZero())
}

func TestModuleCache_InstallRejectsInvalidManifest(t *testing.T) {
	cache := NewModuleCache()

	err := cache.Install(context.Background(), domain.ModuleManifest{ID: "demo"})

	_, ok := domain.IsConfigError(err)
	assert.True(t, ok)
}

func TestModuleCache_ListSortedAndReset(t *testing.T) {
	cache := NewModuleCache()
	ctx := context.Background()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, cache.Install(ctx, domain.ModuleManifest{ID: id, Driver: "demo"}))
	}

	list, err := cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, cache.Reset(ctx))
	list, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, cache.Resets)
	assert.NoError(t, cache.Ping(ctx))
	assert.NoError(t, cache.Close())
}

func TestRepository_IndexAndManifest(t *testing.T) {
	repo := NewRepository(domain.ModuleManifest{ID: "demo", Name: "Demo bank", Version: "2", Driver: "demo"})
	ctx := context.Background()

	idx, err := repo.Index(ctx)
	require.NoError(t, err)
	info, ok := idx.Find("demo")
	require.True(t, ok)
	assert.Equal(t, "2", info.Version)

	m, err := repo.Manifest(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Driver)

	_, err = repo.Manifest(ctx, domain.ModuleInfo{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_FailIndex(t *testing.T) {
	repo := NewRepository()
	boom := errors.New("connection refused")
	repo.FailIndex(boom, 1)
	ctx := context.Background()

	_, err := repo.Index(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = repo.Index(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.IndexCalls)
}
