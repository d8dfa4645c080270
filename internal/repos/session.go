package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

const sessionCollection = "sessions"

// ErrSessionNotFound reports a lookup for a session id that has no
// document.
var ErrSessionNotFound = errors.New("session not found")

type SessionRepo interface {
	// Create writes a new ACTIVE session. Only the lifecycle fields are
	// stored at creation; details, end time and score arrive at finish.
	Create(ctx context.Context, session *types.Session) error

	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*types.Session, error)

	// Finish atomically records details, end time, score and the
	// FINISHED status in one batched write.
	Finish(ctx context.Context, sessionID string, details []*types.RoundDetail, endedAt time.Time, score int) error

	// GetActiveForUser returns the most recently started ACTIVE
	// session, or nil when the user has none.
	GetActiveForUser(ctx context.Context, userID string) (*types.Session, error)
}

type sessionRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewSessionRepo(store docstore.Store, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{store: store, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, session *types.Session) error {
	data := map[string]any{
		"user_id":    session.UserID,
		"game_type":  string(session.GameType),
		"status":     string(session.Status),
		"start_time": session.StartTime.UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.Collection(sessionCollection).Set(ctx, session.SessionID, data); err != nil {
		return fmt.Errorf("create session %s: %w", session.SessionID, err)
	}
	r.log.Debug("created session", "session_id", session.SessionID, "game_type", session.GameType)
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*types.Session, error) {
	data, err := r.store.Collection(sessionCollection).Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return decodeSession(sessionID, data), nil
}

func (r *sessionRepo) Finish(ctx context.Context, sessionID string, details []*types.RoundDetail, endedAt time.Time, score int) error {
	encoded := make([]map[string]any, 0, len(details))
	for _, d := range details {
		encoded = append(encoded, map[string]any{
			"question_id": d.QuestionID,
			"answer":      d.Answer,
			"is_correct":  d.IsCorrect,
			"time_spent":  d.TimeSpent,
		})
	}
	err := r.store.Batch().
		Update(sessionCollection, sessionID, map[string]any{
			"details":  encoded,
			"ended_at": endedAt.UTC().Format(time.RFC3339Nano),
			"score":    score,
			"status":   string(types.SessionStatusFinished),
		}).
		Commit(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	r.log.Debug("finished session", "session_id", sessionID, "score", score, "rounds", len(details))
	return nil
}

func (r *sessionRepo) GetActiveForUser(ctx context.Context, userID string) (*types.Session, error) {
	iter := r.store.Collection(sessionCollection).Query().
		Where("user_id", docstore.OpEqual, userID).
		Where("status", docstore.OpEqual, string(types.SessionStatusActive)).
		Documents(ctx)
	defer iter.Stop()

	var latest *types.Session
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			return latest, nil
		}
		if err != nil {
			return nil, fmt.Errorf("active session query: %w", err)
		}
		// The store permits multiple ACTIVE rows per user; surface the
		// most recently started one.
		session := decodeSession(snap.ID, snap.Data)
		if latest == nil || session.StartTime.After(latest.StartTime) {
			latest = session
		}
	}
}

func decodeSession(id string, data map[string]any) *types.Session {
	session := &types.Session{
		SessionID: id,
		UserID:    asString(data["user_id"]),
		GameType:  types.GameType(asString(data["game_type"])),
		Status:    types.SessionStatus(asString(data["status"])),
		StartTime: asTime(data["start_time"]),
		Score:     asInt(data["score"]),
	}
	if raw, ok := data["ended_at"]; ok {
		ended := asTime(raw)
		session.EndTime = &ended
	}
	switch rounds := data["details"].(type) {
	case []map[string]any:
		for _, d := range rounds {
			session.Details = append(session.Details, decodeRound(d))
		}
	case []any:
		for _, d := range rounds {
			if m, ok := d.(map[string]any); ok {
				session.Details = append(session.Details, decodeRound(m))
			}
		}
	}
	return session
}

func decodeRound(data map[string]any) *types.RoundDetail {
	return &types.RoundDetail{
		QuestionID: asString(data["question_id"]),
		Answer:     asString(data["answer"]),
		IsCorrect:  asBool(data["is_correct"]),
		TimeSpent:  asFloat(data["time_spent"]),
	}
}
