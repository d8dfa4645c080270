package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

func newProgressService(t *testing.T, now time.Time) (*progressService, *engineFixture) {
	t.Helper()
	f := newEngine(t, now)
	svc := NewProgressService(logger.NewNop(), f.progressRepo, f.svc).(*progressService)
	svc.now = func() time.Time { return now }
	return svc, f
}

func TestRecordProgress(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 15, 30, 0, 0, time.UTC)
	svc, f := newProgressService(t, now)

	id, awards, err := svc.RecordProgress(ctx, "u1", RecordProgressInput{
		Score:          60,
		CorrectAnswers: 8,
		TotalAnswers:   10,
		TimeSpent:      120,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1_2025-10-17", id)
	// 60 points in one day crosses the weekly threshold and the first
	// milestone straight away.
	got := awardedTypes(awards)
	assert.True(t, got[types.AchievementWeeklyFifty])
	assert.True(t, got[types.AchievementTotalScore50])

	// Same day again overwrites, not appends.
	id2, _, err := svc.RecordProgress(ctx, "u1", RecordProgressInput{
		Score:          70,
		CorrectAnswers: 9,
		TotalAnswers:   10,
		TimeSpent:      100,
	})
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Equal(t, 1, f.store.Len("progress"))
}

func TestRecordProgressExplicitDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 15, 30, 0, 0, time.UTC)
	svc, _ := newProgressService(t, now)

	id, _, err := svc.RecordProgress(ctx, "u1", RecordProgressInput{
		Score:          10,
		CorrectAnswers: 1,
		TotalAnswers:   2,
		Date:           time.Date(2025, 10, 3, 23, 59, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1_2025-10-03", id)
}

func TestRecordProgressValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 15, 30, 0, 0, time.UTC)
	svc, f := newProgressService(t, now)

	cases := []struct {
		name string
		in   RecordProgressInput
	}{
		{"negative score", RecordProgressInput{Score: -1, CorrectAnswers: 1, TotalAnswers: 1}},
		{"negative answers", RecordProgressInput{Score: 1, CorrectAnswers: -1, TotalAnswers: 1}},
		{"correct exceeds total", RecordProgressInput{Score: 1, CorrectAnswers: 5, TotalAnswers: 3}},
		{"negative time", RecordProgressInput{Score: 1, CorrectAnswers: 1, TotalAnswers: 1, TimeSpent: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.RecordProgress(ctx, "u1", tc.in)
			require.Error(t, err)
			assert.Equal(t, apierr.CodeInvalidInput, apierr.CodeOf(err))
		})
	}
	assert.Equal(t, 0, f.store.Len("progress"))
}

func TestGetProgressAggregates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	svc, f := newProgressService(t, now)

	write := func(daysAgo, score, correct, total int) {
		require.NoError(t, f.progressRepo.RecordDailyScore(ctx, &types.ProgressRecord{
			UserID:         "u1",
			Date:           time.Date(2025, 10, 17-daysAgo, 0, 0, 0, 0, time.UTC),
			Score:          score,
			CorrectAnswers: correct,
			TotalAnswers:   total,
		}))
	}
	write(0, 10, 8, 10)
	write(2, 20, 5, 10)
	write(6, 33, 7, 10)
	write(8, 99, 1, 10) // outside a 7-day window

	summary, err := svc.GetProgress(ctx, "u1", 7)
	require.NoError(t, err)
	require.Len(t, summary.Records, 3)
	assert.Equal(t, 63, summary.TotalScore)
	assert.Equal(t, 21.0, summary.AverageScore)
	// 20 of 30 answers correct.
	assert.Equal(t, 0.67, summary.SuccessRate)

	// A wider window picks up the older record.
	summary, err = svc.GetProgress(ctx, "u1", 30)
	require.NoError(t, err)
	assert.Len(t, summary.Records, 4)
}

func TestGetProgressEmptyWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	svc, _ := newProgressService(t, now)

	summary, err := svc.GetProgress(ctx, "u1", 7)
	require.NoError(t, err)
	assert.NotNil(t, summary.Records)
	assert.Empty(t, summary.Records)
	assert.Equal(t, 0, summary.TotalScore)
	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Equal(t, 0.0, summary.SuccessRate)

	_, err = svc.GetProgress(ctx, "u1", 0)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidInput, apierr.CodeOf(err))
}

func TestGetWeeklySummaryCutoff(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	svc, f := newProgressService(t, now)

	write := func(date time.Time, score int) {
		require.NoError(t, f.progressRepo.RecordDailyScore(ctx, &types.ProgressRecord{
			UserID: "u1", Date: date, Score: score, CorrectAnswers: 1, TotalAnswers: 1,
		}))
	}
	// The cutoff is now minus 7 days rendered to a day key, so the
	// record exactly 7 days back still counts; 8 days back does not.
	write(time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), 5)
	write(time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC), 100)
	write(time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC), 30)

	total, err := svc.GetWeeklySummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 35, total)
}
