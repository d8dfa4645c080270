package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

const achievementCollection = "achievements"

type AchievementRepo interface {
	// Create writes the award under its deterministic document id, so
	// a concurrent duplicate write overwrites rather than duplicates.
	Create(ctx context.Context, a *types.Achievement) error

	// GetForUser returns every award the user has earned.
	GetForUser(ctx context.Context, userID string) ([]*types.Achievement, error)

	// Exists probes for a non-periodic award of the given type.
	Exists(ctx context.Context, userID string, t types.AchievementType) (bool, error)

	// ExistsForPeriod probes for a periodic award keyed by its 7-day
	// window start.
	ExistsForPeriod(ctx context.Context, userID string, t types.AchievementType, periodStart time.Time) (bool, error)

	// ExistsForSession probes for a session-scoped award.
	ExistsForSession(ctx context.Context, userID string, t types.AchievementType, sessionID string) (bool, error)

	// DeleteForPeriod removes periodic awards for a window so they can
	// be re-evaluated. Administrative use only.
	DeleteForPeriod(ctx context.Context, userID string, t types.AchievementType, periodStart time.Time) error
}

type achievementRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewAchievementRepo(store docstore.Store, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{store: store, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Create(ctx context.Context, a *types.Achievement) error {
	data := map[string]any{
		"user_id":   a.UserID,
		"type":      string(a.Type),
		"earned_at": a.EarnedAt.UTC().Format(time.RFC3339Nano),
	}
	if a.SessionID != "" {
		data["session_id"] = a.SessionID
	}
	if !a.PeriodStart.IsZero() {
		data["period_start_date"] = dateutil.DayKey(a.PeriodStart)
	}
	if err := r.store.Collection(achievementCollection).Set(ctx, a.AchievementID, data); err != nil {
		return fmt.Errorf("create achievement %s: %w", a.AchievementID, err)
	}
	r.log.Info("achievement awarded", "achievement_id", a.AchievementID, "type", a.Type)
	return nil
}

func (r *achievementRepo) GetForUser(ctx context.Context, userID string) ([]*types.Achievement, error) {
	iter := r.store.Collection(achievementCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Documents(ctx)
	defer iter.Stop()

	var out []*types.Achievement
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("achievements query: %w", err)
		}
		out = append(out, decodeAchievement(snap.ID, snap.Data))
	}
}

func (r *achievementRepo) Exists(ctx context.Context, userID string, t types.AchievementType) (bool, error) {
	q := r.store.Collection(achievementCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("type", docstore.OpEqual, string(t))
	return r.anyMatch(ctx, q)
}

func (r *achievementRepo) ExistsForPeriod(ctx context.Context, userID string, t types.AchievementType, periodStart time.Time) (bool, error) {
	q := r.store.Collection(achievementCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("type", docstore.OpEqual, string(t)).
		Where("period_start_date", docstore.OpEqual, dateutil.DayKey(periodStart))
	return r.anyMatch(ctx, q)
}

func (r *achievementRepo) ExistsForSession(ctx context.Context, userID string, t types.AchievementType, sessionID string) (bool, error) {
	q := r.store.Collection(achievementCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("type", docstore.OpEqual, string(t)).
		Where("session_id", docstore.OpEqual, sessionID)
	return r.anyMatch(ctx, q)
}

func (r *achievementRepo) anyMatch(ctx context.Context, q docstore.Query) (bool, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()
	_, err := iter.Next()
	if err == docstore.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("achievement existence query: %w", err)
	}
	return true, nil
}

func (r *achievementRepo) DeleteForPeriod(ctx context.Context, userID string, t types.AchievementType, periodStart time.Time) error {
	iter := r.store.Collection(achievementCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("type", docstore.OpEqual, string(t)).
		Where("period_start_date", docstore.OpEqual, dateutil.DayKey(periodStart)).
		Documents(ctx)
	defer iter.Stop()

	coll := r.store.Collection(achievementCollection)
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("achievement delete query: %w", err)
		}
		if err := coll.Delete(ctx, snap.ID); err != nil {
			return fmt.Errorf("delete achievement %s: %w", snap.ID, err)
		}
		r.log.Info("achievement deleted", "achievement_id", snap.ID, "type", t)
	}
}

func decodeAchievement(id string, data map[string]any) *types.Achievement {
	a := &types.Achievement{
		AchievementID: id,
		UserID:        asString(data["user_id"]),
		Type:          types.AchievementType(asString(data["type"])),
		EarnedAt:      asTime(data["earned_at"]),
		SessionID:     asString(data["session_id"]),
	}
	if raw, ok := data["period_start_date"]; ok {
		if ps, err := dateutil.ParseDayKey(asString(raw)); err == nil {
			a.PeriodStart = ps
		}
	}
	return a
}
