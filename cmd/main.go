package main

import (
	"fmt"
	"os"

	redisclient "github.com/dyslexifriend/backend/internal/clients/redis"
	"github.com/dyslexifriend/backend/internal/db"
	"github.com/dyslexifriend/backend/internal/handlers"
	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/middleware"
	"github.com/dyslexifriend/backend/internal/repos"
	"github.com/dyslexifriend/backend/internal/server"
	"github.com/dyslexifriend/backend/internal/services"
	"github.com/dyslexifriend/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	recordStore := repos.NewRecordStore(theDB, log)

	// Optional progress cache
	var progressCache *redisclient.ProgressCache
	if cache, cacheErr := redisclient.NewProgressCache(log); cacheErr != nil {
		log.Warn("Progress cache disabled", "error", cacheErr)
	} else {
		progressCache = cache
		defer progressCache.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	var transcriber services.Transcriber
	speechService, err := services.NewSpeechProviderService(log)
	if err != nil {
		log.Warn("Speech provider init failed, analysis will score against empty speech", "error", err)
	} else {
		transcriber = speechService
		defer speechService.Close()
	}

	geminiClient, err := services.NewGeminiClient(log)
	if err != nil {
		log.Error("Could not init GeminiClient", "error", err)
		os.Exit(1)
	}

	analysisService := services.NewAnalysisService(log, transcriber)
	progressService := services.NewProgressService(log, recordStore, progressCache)
	textService := services.NewTextService(log, geminiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	analysisHandler := handlers.NewAnalysisHandler(log, analysisService)
	textHandler := handlers.NewTextHandler(log, textService)
	exerciseHandler := handlers.NewExerciseHandler(log, geminiClient)
	progressHandler := handlers.NewProgressHandler(log, progressService)

	// Middleware
	requestLogger := middleware.NewRequestLogger(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RequestLogger:   requestLogger,
		AnalysisHandler: analysisHandler,
		TextHandler:     textHandler,
		ExerciseHandler: exerciseHandler,
		ProgressHandler: progressHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
