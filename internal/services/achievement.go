package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/cache"
	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
	"github.com/easytalk/easytalk-backend/internal/types"
)

const (
	// weeklyScoreThreshold is the weekly_fifty eligibility sum.
	weeklyScoreThreshold = 50

	// windowDays is the span of every periodic rule: weekly sums and
	// play streaks both run over trailing 7-day windows.
	windowDays = 7
)

// totalScoreMilestones must stay ascending: a single evaluation awards
// every newly crossed threshold in one pass.
var totalScoreMilestones = []struct {
	Threshold int
	Type      types.AchievementType
}{
	{50, types.AchievementTotalScore50},
	{100, types.AchievementTotalScore100},
	{500, types.AchievementTotalScore500},
}

// AchievementService is the rule engine: it inspects session outcomes
// and cumulative/windowed progress, and awards achievements exactly
// once per (user, rule instance).
//
// None of the evaluations is atomic across its read-check-write steps.
// Two concurrent evaluations for the same user can both pass an
// existence check before either writes; the deterministic award ids
// turn that race into a harmless overwrite of the same document.
type AchievementService interface {
	// EvaluateSessionCompletion applies the perfect-streak rule to a
	// just-finished session. Sessions with zero rounds or any
	// incorrect round award nothing.
	EvaluateSessionCompletion(ctx context.Context, userID, sessionID string, details []*types.RoundDetail) ([]*types.Achievement, error)

	// EvaluateProgressUpdate runs the weekly-threshold, total-score
	// milestone and 7-day-streak checks as of the given date. The
	// checks are independent: a failing check is skipped while the
	// others still run, and any achievements they awarded are returned
	// alongside the joined error.
	EvaluateProgressUpdate(ctx context.Context, userID string, asOf time.Time) ([]*types.Achievement, error)

	// ListWithUnlocked re-evaluates the progress rules for today and
	// returns the catalog annotated with the user's unlocked flags.
	ListWithUnlocked(ctx context.Context, userID string) ([]*types.UnlockedCatalogItem, error)

	// ResetWeekly deletes the user's weekly award for a period so the
	// next evaluation can re-award it. Administrative operation.
	ResetWeekly(ctx context.Context, userID string, periodStart time.Time) error
}

type achievementService struct {
	log             *logger.Logger
	achievementRepo repos.AchievementRepo
	progressRepo    repos.ProgressRepo
	catalog         *cache.CatalogCache
	now             func() time.Time
}

func NewAchievementService(
	log *logger.Logger,
	achievementRepo repos.AchievementRepo,
	progressRepo repos.ProgressRepo,
	catalog *cache.CatalogCache,
) AchievementService {
	return &achievementService{
		log:             log.With("service", "AchievementService"),
		achievementRepo: achievementRepo,
		progressRepo:    progressRepo,
		catalog:         catalog,
		now:             time.Now,
	}
}

// AwardID derives the deterministic document id for an award:
// {user}_{type} for one-shot awards, with the period start or session
// id appended for periodic and session-scoped ones. The key is what
// makes concurrent duplicate writes collapse into one document.
func AwardID(userID string, t types.AchievementType, qualifier string) string {
	if qualifier == "" {
		return fmt.Sprintf("%s_%s", userID, t)
	}
	return fmt.Sprintf("%s_%s_%s", userID, t, qualifier)
}

func (s *achievementService) EvaluateSessionCompletion(ctx context.Context, userID, sessionID string, details []*types.RoundDetail) ([]*types.Achievement, error) {
	// Zero-round sessions are not perfect, they are empty.
	if len(details) == 0 {
		return nil, nil
	}
	for _, d := range details {
		if !d.IsCorrect {
			return nil, nil
		}
	}

	exists, err := s.achievementRepo.ExistsForSession(ctx, userID, types.AchievementPerfectStreak, sessionID)
	if err != nil {
		return nil, storeErr("perfect streak check", err)
	}
	if exists {
		return nil, nil
	}

	award := &types.Achievement{
		AchievementID: AwardID(userID, types.AchievementPerfectStreak, sessionID),
		UserID:        userID,
		Type:          types.AchievementPerfectStreak,
		EarnedAt:      s.now().UTC(),
		SessionID:     sessionID,
	}
	if err := s.achievementRepo.Create(ctx, award); err != nil {
		return nil, storeErr("perfect streak award", err)
	}
	return []*types.Achievement{award}, nil
}

func (s *achievementService) EvaluateProgressUpdate(ctx context.Context, userID string, asOf time.Time) ([]*types.Achievement, error) {
	asOf = dateutil.TruncateToDayUTC(asOf)

	var awarded []*types.Achievement
	var errs []error

	weekly, err := s.checkWeeklyThreshold(ctx, userID, asOf)
	if err != nil {
		errs = append(errs, err)
	} else if weekly != nil {
		awarded = append(awarded, weekly)
	}

	milestones, err := s.checkTotalScoreMilestones(ctx, userID)
	awarded = append(awarded, milestones...)
	if err != nil {
		errs = append(errs, err)
	}

	streak, err := s.checkPlayStreak(ctx, userID, asOf)
	if err != nil {
		errs = append(errs, err)
	} else if streak != nil {
		awarded = append(awarded, streak)
	}

	return awarded, errors.Join(errs...)
}

// checkWeeklyThreshold sums scores over the inclusive calendar window
// [asOf-6, asOf]. The period-start key is derived from asOf, so
// re-running the same day is idempotent. Note: the weekly summary
// endpoint uses a different trailing-week cutoff on purpose; the two
// calculations must not be unified.
func (s *achievementService) checkWeeklyThreshold(ctx context.Context, userID string, asOf time.Time) (*types.Achievement, error) {
	periodStart := dateutil.WindowStart(asOf, windowDays)
	records, err := s.progressRepo.GetRange(ctx, userID, periodStart, asOf)
	if err != nil {
		return nil, storeErr("weekly threshold read", err)
	}
	total := 0
	for _, r := range records {
		total += r.Score
	}
	if total < weeklyScoreThreshold {
		return nil, nil
	}

	exists, err := s.achievementRepo.ExistsForPeriod(ctx, userID, types.AchievementWeeklyFifty, periodStart)
	if err != nil {
		return nil, storeErr("weekly threshold check", err)
	}
	if exists {
		return nil, nil
	}

	award := &types.Achievement{
		AchievementID: AwardID(userID, types.AchievementWeeklyFifty, dateutil.DayKey(periodStart)),
		UserID:        userID,
		Type:          types.AchievementWeeklyFifty,
		EarnedAt:      s.now().UTC(),
		PeriodStart:   periodStart,
	}
	if err := s.achievementRepo.Create(ctx, award); err != nil {
		return nil, storeErr("weekly threshold award", err)
	}
	return award, nil
}

// checkTotalScoreMilestones sums the user's entire score history and
// awards every milestone the total has crossed that is not yet on
// record, lowest first. A user jumping from 0 to 600 earns all three
// in one evaluation.
func (s *achievementService) checkTotalScoreMilestones(ctx context.Context, userID string) ([]*types.Achievement, error) {
	total, err := s.progressRepo.SumTotalScore(ctx, userID)
	if err != nil {
		return nil, storeErr("milestone read", err)
	}

	var awarded []*types.Achievement
	for _, m := range totalScoreMilestones {
		if total < m.Threshold {
			break
		}
		exists, err := s.achievementRepo.Exists(ctx, userID, m.Type)
		if err != nil {
			return awarded, storeErr("milestone check", err)
		}
		if exists {
			continue
		}
		award := &types.Achievement{
			AchievementID: AwardID(userID, m.Type, ""),
			UserID:        userID,
			Type:          m.Type,
			EarnedAt:      s.now().UTC(),
		}
		if err := s.achievementRepo.Create(ctx, award); err != nil {
			return awarded, storeErr("milestone award", err)
		}
		awarded = append(awarded, award)
	}
	return awarded, nil
}

// checkPlayStreak requires a progress record on every one of the 7
// calendar days ending at asOf. Coverage is by exact date set, not
// record count: 7 records that skip a day do not qualify.
func (s *achievementService) checkPlayStreak(ctx context.Context, userID string, asOf time.Time) (*types.Achievement, error) {
	periodStart := dateutil.WindowStart(asOf, windowDays)
	records, err := s.progressRepo.GetRange(ctx, userID, periodStart, asOf)
	if err != nil {
		return nil, storeErr("streak read", err)
	}
	have := make(map[string]bool, len(records))
	for _, r := range records {
		have[dateutil.DayKey(r.Date)] = true
	}
	if !dateutil.CoversEveryDay(have, asOf, windowDays) {
		return nil, nil
	}

	exists, err := s.achievementRepo.ExistsForPeriod(ctx, userID, types.AchievementStreak7Days, periodStart)
	if err != nil {
		return nil, storeErr("streak check", err)
	}
	if exists {
		return nil, nil
	}

	award := &types.Achievement{
		AchievementID: AwardID(userID, types.AchievementStreak7Days, dateutil.DayKey(periodStart)),
		UserID:        userID,
		Type:          types.AchievementStreak7Days,
		EarnedAt:      s.now().UTC(),
		PeriodStart:   periodStart,
	}
	if err := s.achievementRepo.Create(ctx, award); err != nil {
		return nil, storeErr("streak award", err)
	}
	return award, nil
}

func (s *achievementService) ListWithUnlocked(ctx context.Context, userID string) ([]*types.UnlockedCatalogItem, error) {
	// Refresh windowed awards before listing so a user who just became
	// eligible sees the unlock without a separate check call.
	if _, err := s.EvaluateProgressUpdate(ctx, userID, dateutil.TruncateToDayUTC(s.now())); err != nil {
		s.log.Warn("progress evaluation failed during listing", "user_id", userID, "error", err)
	}

	items, err := s.catalog.Items(ctx)
	if err != nil {
		return nil, storeErr("catalog read", err)
	}
	earned, err := s.achievementRepo.GetForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("achievements read", err)
	}
	unlockedTypes := make(map[string]bool, len(earned))
	for _, a := range earned {
		unlockedTypes[string(a.Type)] = true
	}

	out := make([]*types.UnlockedCatalogItem, 0, len(items))
	for _, item := range items {
		out = append(out, &types.UnlockedCatalogItem{
			CatalogItem: *item,
			Unlocked:    unlockedTypes[item.ID],
		})
	}
	return out, nil
}

func (s *achievementService) ResetWeekly(ctx context.Context, userID string, periodStart time.Time) error {
	periodStart = dateutil.TruncateToDayUTC(periodStart)
	if err := s.achievementRepo.DeleteForPeriod(ctx, userID, types.AchievementWeeklyFifty, periodStart); err != nil {
		return storeErr("weekly reset", err)
	}
	return nil
}

// storeErr classifies a repo failure: transient unavailability keeps
// its retryable status, everything else is internal.
func storeErr(op string, err error) error {
	if errors.Is(err, docstore.ErrUnavailable) {
		return apierr.Unavailable(op, err)
	}
	return apierr.Internal(fmt.Errorf("%s: %w", op, err))
}
