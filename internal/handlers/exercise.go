package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/services"
)

type ExerciseHandler struct {
	log    *logger.Logger
	gemini services.GeminiClient
}

func NewExerciseHandler(log *logger.Logger, gemini services.GeminiClient) *ExerciseHandler {
	return &ExerciseHandler{
		log:    log.With("handler", "ExerciseHandler"),
		gemini: gemini,
	}
}

type generateExerciseRequest struct {
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
}

func (eh *ExerciseHandler) GenerateExercise(c *gin.Context) {
	var req generateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", err)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "easy"
	}
	if req.Topic == "" {
		req.Topic = "animals"
	}

	exercise, err := eh.gemini.GenerateExercise(c.Request.Context(), req.Difficulty, req.Topic)
	if err != nil {
		if errors.Is(err, services.ErrUnknownDifficulty) {
			RespondError(c, http.StatusBadRequest, "malformed_input", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "oracle_failed", err)
		return
	}

	RespondOK(c, gin.H{
		"success":  true,
		"exercise": exercise,
	})
}

type encourageRequest struct {
	Score float64 `json:"score"`
}

func (eh *ExerciseHandler) Encourage(c *gin.Context) {
	var req encourageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", err)
		return
	}

	RespondOK(c, gin.H{
		"success": true,
		"message": eh.gemini.GenerateEncouragement(req.Score),
	})
}
