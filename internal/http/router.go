package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/easytalk/easytalk-backend/internal/http/handlers"
	httpMW "github.com/easytalk/easytalk-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *httpMW.AuthMiddleware
	ProgressHandler    *httpH.ProgressHandler
	SessionHandler     *httpH.SessionHandler
	AchievementHandler *httpH.AchievementHandler

	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	r.GET("/healthcheck", httpH.HealthCheck)

	api := r.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// Progress
		api.POST("/progress", cfg.ProgressHandler.SaveProgress)
		api.GET("/progress", cfg.ProgressHandler.GetProgress)
		api.GET("/progress/weekly-summary", cfg.ProgressHandler.GetWeeklySummary)

		// Session
		api.POST("/session/start", cfg.SessionHandler.StartSession)
		api.PATCH("/session/finish", cfg.SessionHandler.FinishSession)
		api.GET("/session/active", cfg.SessionHandler.GetActiveSession)

		// Achievements
		api.GET("/achievements", cfg.AchievementHandler.ListAchievements)
		api.POST("/achievements/check", cfg.AchievementHandler.CheckAchievements)
	}

	return r
}
