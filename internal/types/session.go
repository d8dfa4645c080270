package types

import (
	"errors"
	"time"
)

// MaxRoundDetails caps the per-session round list.
const MaxRoundDetails = 10

var (
	errEmptyUserID         = errors.New("user_id must not be empty")
	errNegativeScore       = errors.New("score must not be negative")
	errNegativeAnswers     = errors.New("answer counts must not be negative")
	errAnswersInconsistent = errors.New("correct_answers must not exceed total_answers")
	errNegativeTimeSpent   = errors.New("time_spent must not be negative")
)

// GameType identifies one of the supported mini games.
type GameType string

const (
	GameTypeGuessAnimal   GameType = "guess_animal"
	GameTypeBuildSentence GameType = "build_sentence"
)

func (g GameType) IsValid() bool {
	switch g {
	case GameTypeGuessAnimal, GameTypeBuildSentence:
		return true
	default:
		return false
	}
}

// SessionStatus is the lifecycle state of a game session. Transitions
// are one-way: active -> finished | abandoned.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusFinished  SessionStatus = "finished"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusFinished, SessionStatusAbandoned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the session can no longer change state.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusFinished || s == SessionStatusAbandoned
}

// RoundDetail is the outcome of a single question within a session.
type RoundDetail struct {
	QuestionID string  `json:"question_id"`
	Answer     string  `json:"answer"`
	IsCorrect  bool    `json:"is_correct"`
	TimeSpent  float64 `json:"time_spent"`
}

// Session is one continuous play-through of a game, composed of rounds.
type Session struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	GameType  GameType       `json:"game_type"`
	Status    SessionStatus  `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Score     int            `json:"score"`
	Details   []*RoundDetail `json:"details"`
}
