package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"roadwatch/internal/detector"
	"roadwatch/internal/models"
	"roadwatch/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submitter is the pipeline surface the submission handlers depend on.
type Submitter interface {
	Submit(ctx context.Context, userID, credential string, media detector.Media) (pipeline.Result, error)
	Record(ctx context.Context, userID, credential, filename, fileType string) (models.HistoryEntry, error)
}

type AnalyzeHandler interface {
	Analyze(c *gin.Context)
}

type analyzeHandler struct {
	pipeline Submitter
	log      *zap.Logger
}

func NewAnalyzeHandler(p Submitter, log *zap.Logger) AnalyzeHandler {
	return &analyzeHandler{pipeline: p, log: log}
}

// Analyze accepts a multipart media upload, runs the detection pipeline
// and answers in the oracle's response shape: images carry the annotated
// frame inline, videos a file URL.
func (h *analyzeHandler) Analyze(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	credential := c.MustGet("credential").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Size > pipeline.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, pipeline.MaxUploadBytes+1))
	if err != nil {
		h.log.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(content) > pipeline.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	filename := fileHeader.Filename
	if filename == "" {
		filename = "upload_" + uuid.NewString()
	}

	media := detector.Media{
		Filename: filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Content:  content,
	}

	result, err := h.pipeline.Submit(c.Request.Context(), userID, credential, media)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Submission failed", zap.String("filename", media.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze file"})
		return
	}

	c.JSON(http.StatusOK, analyzeResponseBody(result, media))
}

// analyzeResponseBody mirrors the detection service's own response
// contract so clients see one shape regardless of which detector answered.
func analyzeResponseBody(result pipeline.Result, media detector.Media) gin.H {
	entry := result.Entry

	body := gin.H{
		"type":           mediaKind(media),
		"violation":      entry.HasViolation(),
		"violation_type": primaryViolationType(entry),
		"timestamp":      entry.Timestamp,
		"origin":         entry.Origin,
		"entry":          entry,
	}
	if result.Oracle != nil {
		if result.Oracle.ImageBase64 != "" {
			body["image_base64"] = result.Oracle.ImageBase64
		}
		if result.Oracle.FileURL != "" {
			body["file_url"] = result.Oracle.FileURL
		}
	}
	return body
}

func mediaKind(media detector.Media) string {
	if media.IsVideo() {
		return "video"
	}
	return "image"
}

// primaryViolationType picks the display verdict: the first violating
// detection, or No Violation for a clean entry.
func primaryViolationType(entry models.HistoryEntry) string {
	for _, d := range entry.Detections {
		if d.Type != models.NoViolation {
			return d.Type
		}
	}
	return models.NoViolation
}
