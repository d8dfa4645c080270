package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/easytalk/easytalk-backend/internal/ctxutil"
	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/http/response"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/services"
	"github.com/easytalk/easytalk-backend/internal/types"
)

type AchievementHandler struct {
	log            *logger.Logger
	achievementSvc services.AchievementService
}

func NewAchievementHandler(log *logger.Logger, achievementSvc services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		log:            log.With("handler", "AchievementHandler"),
		achievementSvc: achievementSvc,
	}
}

// GET /api/achievements
func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	items, err := h.achievementSvc.ListWithUnlocked(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, items)
}

type checkAchievementsResponse struct {
	NewAchievements []*types.Achievement `json:"new_achievements"`
}

// POST /api/achievements/check
func (h *AchievementHandler) CheckAchievements(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	awarded, err := h.achievementSvc.EvaluateProgressUpdate(c.Request.Context(), userID, dateutil.TodayUTC())
	if err != nil {
		// Partial awards may exist; the caller retries safely because
		// every check is existence-gated.
		response.RespondServiceError(c, err)
		return
	}
	if awarded == nil {
		awarded = []*types.Achievement{}
	}
	response.RespondOK(c, checkAchievementsResponse{NewAchievements: awarded})
}
