package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
	"github.com/easytalk/easytalk-backend/internal/types"
)

type SessionService interface {
	// StartSession creates a new ACTIVE session and returns its id.
	// Single-active-session is not enforced here; callers that rely on
	// the invariant consult GetActiveSession first.
	StartSession(ctx context.Context, userID string, gameType types.GameType) (string, error)

	// FinishSession atomically completes the session, then runs the
	// perfect-streak rule. The newly awarded achievements are returned;
	// store failures during the evaluation propagate so the caller can
	// retry (the evaluation is idempotent).
	FinishSession(ctx context.Context, userID, sessionID string, details []*types.RoundDetail, score int) ([]*types.Achievement, error)

	// GetActiveSession returns the user's current ACTIVE session or
	// nil when there is none.
	GetActiveSession(ctx context.Context, userID string) (*types.Session, error)
}

type sessionService struct {
	log          *logger.Logger
	sessionRepo  repos.SessionRepo
	achievements AchievementService
	now          func() time.Time
}

func NewSessionService(log *logger.Logger, sessionRepo repos.SessionRepo, achievements AchievementService) SessionService {
	return &sessionService{
		log:          log.With("service", "SessionService"),
		sessionRepo:  sessionRepo,
		achievements: achievements,
		now:          time.Now,
	}
}

func (s *sessionService) StartSession(ctx context.Context, userID string, gameType types.GameType) (string, error) {
	if !gameType.IsValid() {
		return "", apierr.Invalid("invalid game_type %q, must be %q or %q",
			gameType, types.GameTypeGuessAnimal, types.GameTypeBuildSentence)
	}

	session := &types.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		GameType:  gameType,
		Status:    types.SessionStatusActive,
		StartTime: s.now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", storeErr("start session", err)
	}
	s.log.Info("session started", "session_id", session.SessionID, "user_id", userID, "game_type", gameType)
	return session.SessionID, nil
}

func (s *sessionService) FinishSession(ctx context.Context, userID, sessionID string, details []*types.RoundDetail, score int) ([]*types.Achievement, error) {
	if len(details) > types.MaxRoundDetails {
		return nil, apierr.Invalid("a session holds at most %d round details, got %d", types.MaxRoundDetails, len(details))
	}
	if score < 0 {
		return nil, apierr.Invalid("score must not be negative")
	}
	for _, d := range details {
		if d.TimeSpent < 0 {
			return nil, apierr.Invalid("round time_spent must not be negative")
		}
	}

	// Existence is checked before the write so a bad id maps to 404
	// rather than a store-level failure.
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		if errors.Is(err, repos.ErrSessionNotFound) {
			return nil, apierr.NotFound("session %s not found", sessionID)
		}
		return nil, storeErr("finish session lookup", err)
	}

	if err := s.sessionRepo.Finish(ctx, sessionID, details, s.now().UTC(), score); err != nil {
		if errors.Is(err, repos.ErrSessionNotFound) {
			return nil, apierr.NotFound("session %s not found", sessionID)
		}
		return nil, storeErr("finish session", err)
	}
	s.log.Info("session finished", "session_id", sessionID, "user_id", userID, "score", score)

	return s.achievements.EvaluateSessionCompletion(ctx, userID, sessionID, details)
}

func (s *sessionService) GetActiveSession(ctx context.Context, userID string) (*types.Session, error) {
	session, err := s.sessionRepo.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("active session lookup", err)
	}
	return session, nil
}
