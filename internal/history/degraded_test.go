package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadwatch/internal/localcache"
	"roadwatch/internal/models"
)

// Exercises the offline scenario end to end against a real cache: an
// entry appended while the remote store is down must survive into the
// reconciled view.
func TestLocalFallbackEntrySurvivesRemoteOutage(t *testing.T) {
	cache, err := localcache.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer cache.Close()

	entry := models.HistoryEntry{
		UserID:    "u1",
		Filename:  "offline.jpg",
		MediaType: "image/jpeg",
		Detections: []models.DetectionRecord{
			{Type: models.HelmetViolation, Confidence: 0.81, BoundingBox: &models.BoundingBox{X: 10, Y: 20, Width: 80, Height: 120}},
		},
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Processed: true,
		Origin:    models.OriginLocalFallback,
	}
	cache.Append(entry)

	remote := &fakeRemote{err: models.ErrUnavailable}
	r := NewReconciler(remote, cache, zap.NewNop())

	merged, degraded := r.GetHistory(context.Background(), "u1", "tok")
	assert.True(t, degraded)
	require.Len(t, merged, 1)
	assert.Equal(t, "offline.jpg", merged[0].Filename)
	assert.Equal(t, models.OriginLocalFallback, merged[0].Origin)
	assert.NotEmpty(t, merged[0].Detections)
}
