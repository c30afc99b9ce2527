package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/services"
)

type TextHandler struct {
	log         *logger.Logger
	textService services.TextService
}

func NewTextHandler(log *logger.Logger, textService services.TextService) *TextHandler {
	return &TextHandler{
		log:         log.With("handler", "TextHandler"),
		textService: textService,
	}
}

type simplifyTextRequest struct {
	Text  string `json:"text"`
	Level string `json:"level"`
}

func (th *TextHandler) SimplifyText(c *gin.Context) {
	var req simplifyTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("text is required"))
		return
	}
	if req.Level == "" {
		req.Level = "grade_3"
	}

	result, err := th.textService.SimplifyForStudent(c.Request.Context(), req.Text, req.Level)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "oracle_failed", err)
		return
	}

	RespondOK(c, gin.H{
		"success":               true,
		"original":              result.Original,
		"simplified":            result.Simplified,
		"syllables":             result.Syllables,
		"reading_time_estimate": result.ReadingTimeEstimate,
	})
}
