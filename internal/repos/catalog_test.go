package repos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
)

func TestCatalogRepoSeedAndList(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemStore()
	repo := NewCatalogRepo(store, logger.NewNop())

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, repo.SeedDefaults(ctx))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(DefaultCatalog))

	// List is id ordered.
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].ID, items[i].ID)
	}

	byID := map[string]int{}
	for _, item := range items {
		byID[item.ID] = item.Threshold
	}
	assert.Equal(t, 50, byID["weekly_fifty"])
	assert.Equal(t, 500, byID["total_score_500"])
	assert.Equal(t, 7, byID["streak_7_days"])
}

func TestCatalogRepoSeedSkipsNonEmpty(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemStore()
	repo := NewCatalogRepo(store, logger.NewNop())

	require.NoError(t, store.Collection("achievement_catalog").Set(ctx, "custom", map[string]any{
		"name": "Custom Badge", "threshold": 3,
	}))

	require.NoError(t, repo.SeedDefaults(ctx))
	assert.Equal(t, 1, store.Len("achievement_catalog"))
}
