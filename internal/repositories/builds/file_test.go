package builds_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/repositories/builds"
)

func newRepo(t *testing.T) (*builds.FileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builds.json")
	return builds.NewFileRepository(path), path
}

func sampleBuild(id, weapon string) *build.Build {
	return &build.Build{
		ID:         id,
		WeaponName: weapon,
		Role:       "long range",
		Category:   build.CategoryMeta,
		Mode:       build.ModeWarzone,
		Type:       "assault",
		Modules: map[string]string{
			"muzzle": "monolithic",
			"barrel": "singuard",
			"optic":  "vlk",
			"stock":  "skeleton",
			"ammo":   "60rnd",
		},
		Image:     "images/" + id + ".jpg",
		Author:    "tester",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingFile(t *testing.T) {
	repo, _ := newRepo(t)

	records, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendLoadRoundTrip(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	first := sampleBuild("b-1", "Kilo 141")
	second := sampleBuild("b-2", "HDR")
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0])
	assert.Equal(t, second, records[1])
}

func TestAppendValidation(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	assert.Error(t, repo.Append(ctx, nil))
	assert.Error(t, repo.Append(ctx, sampleBuild("", "Kilo 141")))
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Append(ctx, sampleBuild(fmt.Sprintf("b-%d", i), "Kilo 141")))
	}

	require.NoError(t, repo.Delete(ctx, "b-2"))

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b-1", records[0].ID)
	assert.Equal(t, "b-3", records[1].ID)
}

func TestDeleteNotFound(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleBuild("b-1", "Kilo 141")))

	err := repo.Delete(ctx, "b-99")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCorruptStore(t *testing.T) {
	repo, path := newRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCorrupt(err))

	// a corrupt store refuses mutations too
	err = repo.Append(context.Background(), sampleBuild("b-1", "Kilo 141"))
	assert.True(t, apperrors.IsCorrupt(err))
}

func TestStoreWithMissingFields(t *testing.T) {
	repo, path := newRepo(t)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "b-1"}]`), 0o644))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCorrupt(err))
}

func TestConcurrentAppends(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, repo.Append(ctx, sampleBuild(fmt.Sprintf("b-%d", i), "Kilo 141")))
		}(i)
	}
	wg.Wait()

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

func TestAppendStoresCopy(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	b := sampleBuild("b-1", "Kilo 141")
	require.NoError(t, repo.Append(ctx, b))
	b.WeaponName = "mutated"

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kilo 141", records[0].WeaponName)
}
