package types

import "time"

// AchievementType is the closed set of award rules. The rule engine
// branches on type identity; adding a rule is a code change, not
// configuration.
type AchievementType string

const (
	// AchievementPerfectStreak: every round of a finished session was
	// answered correctly. Earnable once per qualifying session.
	AchievementPerfectStreak AchievementType = "perfect_streak"

	// AchievementWeeklyFifty: at least 50 points over the trailing
	// 7-day window. Earnable once per window period.
	AchievementWeeklyFifty AchievementType = "weekly_fifty"

	// Total-score milestones over the unbounded history.
	AchievementTotalScore50  AchievementType = "total_score_50"
	AchievementTotalScore100 AchievementType = "total_score_100"
	AchievementTotalScore500 AchievementType = "total_score_500"

	// AchievementStreak7Days: a progress record on each of 7
	// consecutive calendar days. Earnable once per window period.
	AchievementStreak7Days AchievementType = "streak_7_days"
)

func (t AchievementType) IsValid() bool {
	switch t {
	case AchievementPerfectStreak, AchievementWeeklyFifty,
		AchievementTotalScore50, AchievementTotalScore100, AchievementTotalScore500,
		AchievementStreak7Days:
		return true
	default:
		return false
	}
}

// IsPeriodic reports whether awards of this type are deduplicated per
// 7-day period rather than globally per user.
func (t AchievementType) IsPeriodic() bool {
	return t == AchievementWeeklyFifty || t == AchievementStreak7Days
}

// Achievement is a persisted badge award. Records are written exactly
// once by the rule engine and never updated.
type Achievement struct {
	AchievementID string          `json:"achievement_id"`
	UserID        string          `json:"user_id"`
	Type          AchievementType `json:"type"`
	EarnedAt      time.Time       `json:"earned_at"`

	// SessionID is set only for session-scoped awards (perfect_streak).
	SessionID string `json:"session_id,omitempty"`

	// PeriodStart identifies which 7-day window a periodic award
	// belongs to. Zero for non-periodic awards.
	PeriodStart time.Time `json:"period_start_date,omitempty"`
}

// CatalogItem is a static achievement definition: reference data for
// clients, seeded once and cached with a TTL.
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
	Threshold   int    `json:"threshold"`
}

// UnlockedCatalogItem is a catalog entry annotated with whether the
// requesting user has earned it.
type UnlockedCatalogItem struct {
	CatalogItem
	Unlocked bool `json:"unlocked"`
}
