package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/ctxutil"
	"github.com/easytalk/easytalk-backend/internal/http/response"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/services"
	"github.com/easytalk/easytalk-backend/internal/types"
)

type SessionHandler struct {
	log        *logger.Logger
	sessionSvc services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionSvc services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:        log.With("handler", "SessionHandler"),
		sessionSvc: sessionSvc,
	}
}

type startSessionRequest struct {
	GameType string `json:"game_type"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
}

// POST /api/session/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	userID := ctxutil.UserID(c.Request.Context())
	sessionID, err := h.sessionSvc.StartSession(c.Request.Context(), userID, types.GameType(req.GameType))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, startSessionResponse{SessionID: sessionID})
}

type finishSessionRequest struct {
	Details []*types.RoundDetail `json:"details"`
	Score   int                  `json:"score"`
}

type finishSessionResponse struct {
	Message         string               `json:"message"`
	NewAchievements []*types.Achievement `json:"new_achievements"`
}

// PATCH /api/session/finish?session_id=
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.RespondServiceError(c, apierr.Invalid("session_id query parameter is required"))
		return
	}
	var req finishSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	userID := ctxutil.UserID(c.Request.Context())
	awarded, err := h.sessionSvc.FinishSession(c.Request.Context(), userID, sessionID, req.Details, req.Score)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if awarded == nil {
		awarded = []*types.Achievement{}
	}
	response.RespondOK(c, finishSessionResponse{
		Message:         "Session finished successfully",
		NewAchievements: awarded,
	})
}

type activeSessionResponse struct {
	Session *types.Session `json:"session"`
}

// GET /api/session/active
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	session, err := h.sessionSvc.GetActiveSession(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, activeSessionResponse{Session: session})
}
