package services

import (
	"context"
	"math"
	"time"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
	"github.com/easytalk/easytalk-backend/internal/types"
)

// RecordProgressInput is one day's submitted performance. Date is
// optional; zero means today (UTC).
type RecordProgressInput struct {
	Score          int
	CorrectAnswers int
	TotalAnswers   int
	TimeSpent      float64
	Date           time.Time
}

type ProgressService interface {
	// RecordProgress validates and writes the daily record (same-day
	// overwrite), then evaluates the progress achievement rules. The
	// record id is returned regardless of evaluation outcome;
	// evaluation failures are logged, not propagated, because the next
	// triggering action re-evaluates from persisted state.
	RecordProgress(ctx context.Context, userID string, in RecordProgressInput) (string, []*types.Achievement, error)

	// GetProgress aggregates the trailing `days`-day window including
	// today. An empty window yields zeroed aggregates, not an error.
	GetProgress(ctx context.Context, userID string, days int) (*types.ProgressSummary, error)

	// GetWeeklySummary sums scores since the now-minus-7-days datetime
	// cutoff. This boundary differs from the weekly achievement's
	// inclusive calendar window and the two are kept separate to match
	// the external contract.
	GetWeeklySummary(ctx context.Context, userID string) (int, error)
}

type progressService struct {
	log          *logger.Logger
	progressRepo repos.ProgressRepo
	achievements AchievementService
	now          func() time.Time
}

func NewProgressService(log *logger.Logger, progressRepo repos.ProgressRepo, achievements AchievementService) ProgressService {
	return &progressService{
		log:          log.With("service", "ProgressService"),
		progressRepo: progressRepo,
		achievements: achievements,
		now:          time.Now,
	}
}

func (s *progressService) RecordProgress(ctx context.Context, userID string, in RecordProgressInput) (string, []*types.Achievement, error) {
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	rec := &types.ProgressRecord{
		UserID:         userID,
		Date:           dateutil.TruncateToDayUTC(date),
		Score:          in.Score,
		CorrectAnswers: in.CorrectAnswers,
		TotalAnswers:   in.TotalAnswers,
		TimeSpent:      in.TimeSpent,
	}
	if err := rec.Validate(); err != nil {
		return "", nil, apierr.Invalid("%v", err)
	}

	if err := s.progressRepo.RecordDailyScore(ctx, rec); err != nil {
		return "", nil, storeErr("record progress", err)
	}

	progressID := repos.ProgressDocID(userID, rec.Date)
	awarded, err := s.achievements.EvaluateProgressUpdate(ctx, userID, rec.Date)
	if err != nil {
		// The record is committed; a lost evaluation is recovered on
		// the user's next triggering action.
		s.log.Warn("achievement evaluation failed after progress write",
			"user_id", userID, "progress_id", progressID, "error", err)
	}
	return progressID, awarded, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string, days int) (*types.ProgressSummary, error) {
	if days < 1 {
		return nil, apierr.Invalid("days must be at least 1, got %d", days)
	}
	end := dateutil.TruncateToDayUTC(s.now())
	start := dateutil.WindowStart(end, days)

	records, err := s.progressRepo.GetRange(ctx, userID, start, end)
	if err != nil {
		return nil, storeErr("get progress", err)
	}

	summary := &types.ProgressSummary{Records: records}
	if len(records) == 0 {
		summary.Records = []*types.ProgressRecord{}
		return summary, nil
	}

	totalCorrect, totalAnswers := 0, 0
	for _, r := range records {
		summary.TotalScore += r.Score
		totalCorrect += r.CorrectAnswers
		totalAnswers += r.TotalAnswers
	}
	summary.AverageScore = roundTo(float64(summary.TotalScore)/float64(len(records)), 1)
	if totalAnswers > 0 {
		summary.SuccessRate = roundTo(float64(totalCorrect)/float64(totalAnswers), 2)
	}
	return summary, nil
}

func (s *progressService) GetWeeklySummary(ctx context.Context, userID string) (int, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -7)
	total, err := s.progressRepo.SumScoresSince(ctx, userID, cutoff)
	if err != nil {
		return 0, storeErr("weekly summary", err)
	}
	return total, nil
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
