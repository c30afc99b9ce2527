package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/repos"
	"github.com/dyslexifriend/backend/internal/services"
	"github.com/dyslexifriend/backend/internal/types"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

type saveProgressRequest struct {
	StudentID   string               `json:"student_id"`
	SessionData types.ReadingSession `json:"session_data"`
}

func (ph *ProgressHandler) SaveProgress(c *gin.Context) {
	var req saveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", err)
		return
	}

	if err := ph.progressService.SaveSession(c.Request.Context(), req.StudentID, req.SessionData); err != nil {
		if errors.Is(err, services.ErrMissingStudentID) || errors.Is(err, services.ErrInvalidSession) {
			RespondError(c, http.StatusBadRequest, "malformed_input", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "store_failed", err)
		return
	}

	RespondOK(c, gin.H{"success": true, "message": "Progress saved"})
}

func (ph *ProgressHandler) GetProgress(c *gin.Context) {
	studentID := c.Param("studentId")

	report, err := ph.progressService.GetProgress(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		if errors.Is(err, services.ErrMissingStudentID) {
			RespondError(c, http.StatusBadRequest, "malformed_input", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "store_failed", err)
		return
	}

	RespondOK(c, gin.H{"success": true, "progress": report})
}
