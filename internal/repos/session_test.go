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

func TestSessionRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(docstore.NewMemStore(), logger.NewNop())

	started := time.Date(2025, 10, 17, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &types.Session{
		SessionID: "s1",
		UserID:    "u1",
		GameType:  types.GameTypeGuessAnimal,
		Status:    types.SessionStatusActive,
		StartTime: started,
	}))

	session, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, types.GameTypeGuessAnimal, session.GameType)
	assert.Equal(t, types.SessionStatusActive, session.Status)
	assert.True(t, session.StartTime.Equal(started))
	assert.Nil(t, session.EndTime)
	assert.Empty(t, session.Details)

	details := []*types.RoundDetail{
		{QuestionID: "q1", Answer: "cat", IsCorrect: true, TimeSpent: 3.2},
		{QuestionID: "q2", Answer: "dog", IsCorrect: false, TimeSpent: 5.1},
	}
	ended := started.Add(10 * time.Minute)
	require.NoError(t, repo.Finish(ctx, "s1", details, ended, 15))

	session, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.SessionStatusFinished, session.Status)
	assert.Equal(t, 15, session.Score)
	require.NotNil(t, session.EndTime)
	assert.True(t, session.EndTime.Equal(ended))
	require.Len(t, session.Details, 2)
	assert.Equal(t, "q1", session.Details[0].QuestionID)
	assert.True(t, session.Details[0].IsCorrect)
	assert.False(t, session.Details[1].IsCorrect)
	assert.Equal(t, 5.1, session.Details[1].TimeSpent)
}

func TestSessionRepoNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(docstore.NewMemStore(), logger.NewNop())

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = repo.Finish(ctx, "missing", nil, time.Now(), 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepoGetActiveForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(docstore.NewMemStore(), logger.NewNop())

	base := time.Date(2025, 10, 17, 8, 0, 0, 0, time.UTC)
	mk := func(id string, start time.Time, status types.SessionStatus) {
		require.NoError(t, repo.Create(ctx, &types.Session{
			SessionID: id,
			UserID:    "u1",
			GameType:  types.GameTypeBuildSentence,
			Status:    types.SessionStatusActive,
			StartTime: start,
		}))
		if status == types.SessionStatusFinished {
			require.NoError(t, repo.Finish(ctx, id, nil, start.Add(time.Minute), 0))
		}
	}

	session, err := repo.GetActiveForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, session)

	mk("old-active", base, types.SessionStatusActive)
	mk("finished", base.Add(1*time.Hour), types.SessionStatusFinished)
	mk("new-active", base.Add(2*time.Hour), types.SessionStatusActive)

	session, err = repo.GetActiveForUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "new-active", session.SessionID)

	session, err = repo.GetActiveForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, session)
}
