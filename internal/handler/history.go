package handler

import (
	"context"
	"net/http"

	"roadwatch/internal/models"
	"roadwatch/internal/query"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryProvider is the reconciler surface the history handlers depend
// on. The boolean result is the degraded-mode flag.
type HistoryProvider interface {
	GetHistory(ctx context.Context, userID, credential string) ([]models.HistoryEntry, bool)
}

type HistoryHandler interface {
	GetHistory(c *gin.Context)
	GetSummary(c *gin.Context)
}

type historyHandler struct {
	reconciler HistoryProvider
	log        *zap.Logger
}

func NewHistoryHandler(reconciler HistoryProvider, log *zap.Logger) HistoryHandler {
	return &historyHandler{reconciler: reconciler, log: log}
}

// GetHistory returns the merged submission history, most recent first.
// Optional query params: q (filename substring), category
// (all|violations|clean|helmet|tripleRiding). The degraded flag signals a
// local-only view and is advisory, never an error.
func (h *historyHandler) GetHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	credential := c.MustGet("credential").(string)

	entries, degraded := h.reconciler.GetHistory(c.Request.Context(), userID, credential)

	entries = query.FilterByText(entries, c.Query("q"))
	entries = query.FilterByCategory(entries, c.Query("category"))

	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"history":  entries,
		"degraded": degraded,
	})
}

// GetSummary returns per-category counts over the reconciled history.
func (h *historyHandler) GetSummary(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	credential := c.MustGet("credential").(string)

	entries, degraded := h.reconciler.GetHistory(c.Request.Context(), userID, credential)

	c.JSON(http.StatusOK, gin.H{
		"summary":  query.Summarize(entries),
		"degraded": degraded,
	})
}
