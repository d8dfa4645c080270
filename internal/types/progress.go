package types

import "time"

// ProgressRecord is one user's quiz/game performance summary for a
// single UTC calendar day. At most one record exists per (user, day);
// re-recording the same day replaces the previous record.
type ProgressRecord struct {
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalAnswers   int       `json:"total_answers"`
	TimeSpent      float64   `json:"time_spent"`
}

// SuccessRate is correct/total, 0 when the user answered nothing.
func (r *ProgressRecord) SuccessRate() float64 {
	if r.TotalAnswers <= 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalAnswers)
}

// Validate enforces the field invariants shared by every write path.
func (r *ProgressRecord) Validate() error {
	switch {
	case r.UserID == "":
		return errEmptyUserID
	case r.Score < 0:
		return errNegativeScore
	case r.CorrectAnswers < 0 || r.TotalAnswers < 0:
		return errNegativeAnswers
	case r.CorrectAnswers > r.TotalAnswers:
		return errAnswersInconsistent
	case r.TimeSpent < 0:
		return errNegativeTimeSpent
	}
	return nil
}

// ProgressSummary aggregates a trailing window of progress records.
type ProgressSummary struct {
	Records      []*ProgressRecord `json:"data"`
	TotalScore   int               `json:"total_score"`
	AverageScore float64           `json:"average_score"`
	SuccessRate  float64           `json:"success_rate"`
}
