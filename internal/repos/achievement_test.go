package repos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

func TestAchievementRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemStore()
	repo := NewAchievementRepo(store, logger.NewNop())

	earned := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_total_score_50",
		UserID:        "u1",
		Type:          types.AchievementTotalScore50,
		EarnedAt:      earned,
	}))
	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_weekly_fifty_2025-10-11",
		UserID:        "u1",
		Type:          types.AchievementWeeklyFifty,
		EarnedAt:      earned,
		PeriodStart:   day(2025, 10, 11),
	}))

	all, err := repo.GetForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[string]*types.Achievement{}
	for _, a := range all {
		byID[a.AchievementID] = a
	}
	milestone := byID["u1_total_score_50"]
	require.NotNil(t, milestone)
	assert.Equal(t, types.AchievementTotalScore50, milestone.Type)
	assert.True(t, milestone.EarnedAt.Equal(earned))
	assert.True(t, milestone.PeriodStart.IsZero())

	weekly := byID["u1_weekly_fifty_2025-10-11"]
	require.NotNil(t, weekly)
	assert.Equal(t, day(2025, 10, 11), weekly.PeriodStart)

	none, err := repo.GetForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAchievementRepoCreateOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemStore()
	repo := NewAchievementRepo(store, logger.NewNop())

	a := &types.Achievement{
		AchievementID: "u1_total_score_50",
		UserID:        "u1",
		Type:          types.AchievementTotalScore50,
		EarnedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, a))
	assert.Equal(t, 1, store.Len("achievements"))
}

func TestAchievementRepoExistenceProbes(t *testing.T) {
	ctx := context.Background()
	repo := NewAchievementRepo(docstore.NewMemStore(), logger.NewNop())

	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_perfect_streak_s1",
		UserID:        "u1",
		Type:          types.AchievementPerfectStreak,
		EarnedAt:      time.Now().UTC(),
		SessionID:     "s1",
	}))
	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_streak_7_days_2025-10-11",
		UserID:        "u1",
		Type:          types.AchievementStreak7Days,
		EarnedAt:      time.Now().UTC(),
		PeriodStart:   day(2025, 10, 11),
	}))

	ok, err := repo.Exists(ctx, "u1", types.AchievementPerfectStreak)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "u1", types.AchievementTotalScore500)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsForSession(ctx, "u1", types.AchievementPerfectStreak, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExistsForSession(ctx, "u1", types.AchievementPerfectStreak, "s2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsForPeriod(ctx, "u1", types.AchievementStreak7Days, day(2025, 10, 11))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExistsForPeriod(ctx, "u1", types.AchievementStreak7Days, day(2025, 10, 12))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "u2", types.AchievementPerfectStreak)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAchievementRepoDeleteForPeriod(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemStore()
	repo := NewAchievementRepo(store, logger.NewNop())

	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_weekly_fifty_2025-10-11",
		UserID:        "u1",
		Type:          types.AchievementWeeklyFifty,
		EarnedAt:      time.Now().UTC(),
		PeriodStart:   day(2025, 10, 11),
	}))
	require.NoError(t, repo.Create(ctx, &types.Achievement{
		AchievementID: "u1_weekly_fifty_2025-10-04",
		UserID:        "u1",
		Type:          types.AchievementWeeklyFifty,
		EarnedAt:      time.Now().UTC(),
		PeriodStart:   day(2025, 10, 4),
	}))

	require.NoError(t, repo.DeleteForPeriod(ctx, "u1", types.AchievementWeeklyFifty, day(2025, 10, 11)))

	ok, err := repo.ExistsForPeriod(ctx, "u1", types.AchievementWeeklyFifty, day(2025, 10, 11))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.ExistsForPeriod(ctx, "u1", types.AchievementWeeklyFifty, day(2025, 10, 4))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len("achievements"))
}
