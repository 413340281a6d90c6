package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/controllers"
	"github.com/MU-MU-00/lingocard/middleware"
	"github.com/MU-MU-00/lingocard/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))

		// Sinh thẻ và CRUD term
		user.POST("/terms/generate", controllers.GenerateTermCard)
		user.POST("/terms/extract", controllers.ExtractTerms)
		user.POST("/terms", controllers.CreateTerm)
		user.GET("/terms", controllers.GetTerms)
		user.GET("/terms/:id", controllers.GetTermDetail)
		user.PUT("/terms/:id", controllers.UpdateTerm)
		user.DELETE("/terms/:id", controllers.DeleteTerm)
		user.POST("/terms/:id/audio", controllers.GenerateTermAudio)

		// Quản lý nhóm
		user.POST("/groups", controllers.CreateGroup)
		user.GET("/groups", controllers.GetGroups)
		user.GET("/groups/:id", controllers.GetGroupDetail)
		user.PUT("/groups/:id", controllers.UpdateGroup)
		user.DELETE("/groups/:id", controllers.DeleteGroup)
		user.GET("/groups/:id/export", controllers.ExportGroup)
		user.POST("/groups/:id/import", controllers.ImportTerms)
		user.POST("/groups/import", controllers.ImportBackup)

		// Ôn tập spaced repetition
		user.GET("/reviews/pool", controllers.GetReviewPool)
		user.POST("/reviews/sessions", controllers.CreateReviewSession)
		user.GET("/reviews/sessions/:id", controllers.GetReviewSession)
		user.POST("/reviews/sessions/:id/answer", controllers.AnswerReviewSession)
		user.DELETE("/reviews/sessions/:id", controllers.AbortReviewSession)

		// Đọc text và thống kê
		user.POST("/tts", controllers.TextToSpeechHandler)
		user.GET("/stats", controllers.GetStudyStats)
	}

	r.GET("/ws/group/:id", ws.HandleGroupWebSocket)
	r.GET("/ws/status", ws.HandleStatusWebSocket)

	return r
}
