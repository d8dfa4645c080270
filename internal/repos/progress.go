package repos

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

const progressCollection = "progress"

// ProgressDocID is the identity key for daily progress: one document
// per user per calendar day, so a same-day re-record overwrites.
func ProgressDocID(userID string, date time.Time) string {
	return fmt.Sprintf("%s_%s", userID, dateutil.DayKey(date))
}

type ProgressRepo interface {
	// RecordDailyScore writes the record, fully replacing any existing
	// record for that user and day.
	RecordDailyScore(ctx context.Context, rec *types.ProgressRecord) error

	// GetRange streams records with start <= date <= end, sorted by
	// date ascending.
	GetRange(ctx context.Context, userID string, start, end time.Time) ([]*types.ProgressRecord, error)

	// SumTotalScore sums every score the user ever recorded.
	SumTotalScore(ctx context.Context, userID string) (int, error)

	// SumScoresSince sums scores for records with date >= since,
	// where since is a datetime cutoff rendered to a day key. This is
	// the weekly-summary semantics and is intentionally not the same
	// window as the weekly achievement (see AchievementService).
	SumScoresSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type progressRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewProgressRepo(store docstore.Store, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{store: store, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) RecordDailyScore(ctx context.Context, rec *types.ProgressRecord) error {
	docID := ProgressDocID(rec.UserID, rec.Date)
	data := map[string]any{
		"user_id":         rec.UserID,
		"date":            dateutil.DayKey(rec.Date),
		"score":           rec.Score,
		"correct_answers": rec.CorrectAnswers,
		"total_answers":   rec.TotalAnswers,
		"time_spent":      rec.TimeSpent,
	}
	if err := r.store.Collection(progressCollection).Set(ctx, docID, data); err != nil {
		return fmt.Errorf("record daily score %s: %w", docID, err)
	}
	r.log.Debug("recorded daily score", "doc_id", docID, "score", rec.Score)
	return nil
}

func (r *progressRepo) GetRange(ctx context.Context, userID string, start, end time.Time) ([]*types.ProgressRecord, error) {
	iter := r.store.Collection(progressCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("date", docstore.OpGreaterOrEqual, dateutil.DayKey(start)).
		Where("date", docstore.OpLessOrEqual, dateutil.DayKey(end)).
		Documents(ctx)
	defer iter.Stop()

	var records []*types.ProgressRecord
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("progress range query: %w", err)
		}
		records = append(records, decodeProgress(snap.Data))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func (r *progressRepo) SumTotalScore(ctx context.Context, userID string) (int, error) {
	iter := r.store.Collection(progressCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Documents(ctx)
	defer iter.Stop()
	return sumScores(iter)
}

func (r *progressRepo) SumScoresSince(ctx context.Context, userID string, since time.Time) (int, error) {
	iter := r.store.Collection(progressCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("date", docstore.OpGreaterOrEqual, dateutil.DayKey(since)).
		Documents(ctx)
	defer iter.Stop()
	return sumScores(iter)
}

func sumScores(iter docstore.Iterator) (int, error) {
	total := 0
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("progress sum query: %w", err)
		}
		total += asInt(snap.Data["score"])
	}
}

func decodeProgress(data map[string]any) *types.ProgressRecord {
	date, _ := dateutil.ParseDayKey(asString(data["date"]))
	return &types.ProgressRecord{
		UserID:         asString(data["user_id"]),
		Date:           date,
		Score:          asInt(data["score"]),
		CorrectAnswers: asInt(data["correct_answers"]),
		TotalAnswers:   asInt(data["total_answers"]),
		TimeSpent:      asFloat(data["time_spent"]),
	}
}
