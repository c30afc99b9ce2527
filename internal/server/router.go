package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dyslexifriend/backend/internal/handlers"
	"github.com/dyslexifriend/backend/internal/middleware"
)

type RouterConfig struct {
	RequestLogger   *middleware.RequestLogger
	AnalysisHandler *handlers.AnalysisHandler
	TextHandler     *handlers.TextHandler
	ExerciseHandler *handlers.ExerciseHandler
	ProgressHandler *handlers.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cfg.RequestLogger.Handler())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/", handlers.Root)
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/analyze-speech", cfg.AnalysisHandler.AnalyzeSpeech)
		api.POST("/simplify-text", cfg.TextHandler.SimplifyText)
		api.POST("/generate-exercise", cfg.ExerciseHandler.GenerateExercise)
		api.POST("/encourage", cfg.ExerciseHandler.Encourage)
		api.POST("/save-progress", cfg.ProgressHandler.SaveProgress)
		api.GET("/get-progress/:studentId", cfg.ProgressHandler.GetProgress)
	}

	return router
}
