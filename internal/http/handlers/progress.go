package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/ctxutil"
	"github.com/easytalk/easytalk-backend/internal/dateutil"
	"github.com/easytalk/easytalk-backend/internal/http/response"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/services"
	"github.com/easytalk/easytalk-backend/internal/types"
)

type ProgressHandler struct {
	log         *logger.Logger
	progressSvc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressSvc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		progressSvc: progressSvc,
	}
}

type saveProgressRequest struct {
	Score          int     `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalAnswers   int     `json:"total_answers"`
	TimeSpent      float64 `json:"time_spent"`
	Date           string  `json:"date"`
}

type saveProgressResponse struct {
	Message         string               `json:"message"`
	ProgressID      string               `json:"progress_id"`
	NewAchievements []*types.Achievement `json:"new_achievements"`
}

// POST /api/progress
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var req saveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := dateutil.ParseDayKey(req.Date)
		if err != nil {
			response.RespondServiceError(c, apierr.Invalid("invalid date format %q, use YYYY-MM-DD", req.Date))
			return
		}
		date = parsed
	}

	userID := ctxutil.UserID(c.Request.Context())
	progressID, awarded, err := h.progressSvc.RecordProgress(c.Request.Context(), userID, services.RecordProgressInput{
		Score:          req.Score,
		CorrectAnswers: req.CorrectAnswers,
		TotalAnswers:   req.TotalAnswers,
		TimeSpent:      req.TimeSpent,
		Date:           date,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if awarded == nil {
		awarded = []*types.Achievement{}
	}
	response.RespondOK(c, saveProgressResponse{
		Message:         "Progress saved successfully",
		ProgressID:      progressID,
		NewAchievements: awarded,
	})
}

type progressItem struct {
	Date           string  `json:"date"`
	DailyScore     int     `json:"daily_score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalAnswers   int     `json:"total_answers"`
	SuccessRate    float64 `json:"success_rate"`
	TimeSpent      float64 `json:"time_spent"`
}

type progressResponse struct {
	Data         []progressItem `json:"data"`
	TotalScore   int            `json:"total_score"`
	AverageScore float64        `json:"average_score"`
	SuccessRate  float64        `json:"success_rate"`
}

// GET /api/progress?days=N
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 30 {
			response.RespondServiceError(c, apierr.Invalid("days must be an integer between 1 and 30"))
			return
		}
		days = parsed
	}

	userID := ctxutil.UserID(c.Request.Context())
	summary, err := h.progressSvc.GetProgress(c.Request.Context(), userID, days)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	items := make([]progressItem, 0, len(summary.Records))
	for _, r := range summary.Records {
		items = append(items, progressItem{
			Date:           dateutil.DayKey(r.Date),
			DailyScore:     r.Score,
			CorrectAnswers: r.CorrectAnswers,
			TotalAnswers:   r.TotalAnswers,
			SuccessRate:    r.SuccessRate(),
			TimeSpent:      r.TimeSpent,
		})
	}
	response.RespondOK(c, progressResponse{
		Data:         items,
		TotalScore:   summary.TotalScore,
		AverageScore: summary.AverageScore,
		SuccessRate:  summary.SuccessRate,
	})
}

type weeklySummaryResponse struct {
	TotalWeeklyScore int `json:"total_weekly_score"`
}

// GET /api/progress/weekly-summary
func (h *ProgressHandler) GetWeeklySummary(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	total, err := h.progressSvc.GetWeeklySummary(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, weeklySummaryResponse{TotalWeeklyScore: total})
}
