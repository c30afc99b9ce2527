package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/services"
)

type AnalysisHandler struct {
	log             *logger.Logger
	analysisService services.AnalysisService
}

func NewAnalysisHandler(log *logger.Logger, analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		log:             log.With("handler", "AnalysisHandler"),
		analysisService: analysisService,
	}
}

// AnalyzeSpeech accepts a multipart upload: an "audio" file part and a "text"
// field with the passage the student was asked to read.
func (ah *AnalysisHandler) AnalyzeSpeech(c *gin.Context) {
	expectedText := c.PostForm("text")

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("audio file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("could not open audio upload: %w", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("could not read audio upload: %w", err))
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	analysis, err := ah.analysisService.AnalyzeReading(c.Request.Context(), audio, mimeType, expectedText)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}

	RespondOK(c, gin.H{
		"success":          true,
		"analysis":         analysis,
		"difficulty_score": analysis.DifficultyScore,
		"stumbling_words":  analysis.StumblingWords,
		"suggestions":      analysis.Suggestions,
	})
}
