package handler

import (
	"errors"
	"net/http"

	"roadwatch/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DetectionHandler interface {
	RecordDetection(c *gin.Context)
}

type detectionHandler struct {
	pipeline Submitter
	log      *zap.Logger
}

func NewDetectionHandler(p Submitter, log *zap.Logger) DetectionHandler {
	return &detectionHandler{pipeline: p, log: log}
}

type RecordDetectionRequest struct {
	Filename string `json:"filename" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
}

// RecordDetection registers a detection for an already-named file and
// persists the resulting history entry to both stores.
func (h *detectionHandler) RecordDetection(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	credential := c.MustGet("credential").(string)

	var req RecordDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON for detection recording", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.pipeline.Record(c.Request.Context(), userID, credential, req.Filename, req.FileType)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to record detection", zap.String("filename", req.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record detection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"detections":  entry.Detections,
		"processedAt": entry.Timestamp,
	})
}
