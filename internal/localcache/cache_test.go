package localcache

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadwatch/internal/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func cacheEntry(userID, filename string, ts time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		UserID:    userID,
		Filename:  filename,
		MediaType: "image/jpeg",
		Detections: []models.DetectionRecord{
			{Type: models.HelmetViolation, Confidence: 0.8, BoundingBox: &models.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
		},
		Timestamp: ts,
		Processed: true,
		Origin:    models.OriginLocalFallback,
	}
}

func TestAppendAndReadAllKeepsOrder(t *testing.T) {
	cache := newTestCache(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cache.Append(cacheEntry("u1", "first.jpg", base))
	cache.Append(cacheEntry("u1", "second.jpg", base.Add(time.Minute)))
	cache.Append(cacheEntry("u2", "other.jpg", base.Add(2*time.Minute)))

	entries := cache.ReadAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "first.jpg", entries[0].Filename)
	assert.Equal(t, "second.jpg", entries[1].Filename)
	assert.Equal(t, "other.jpg", entries[2].Filename)
}

func TestReadAllEmptyCache(t *testing.T) {
	cache := newTestCache(t)
	assert.Empty(t, cache.ReadAll())
}

func TestReadAllRoundTripsDetections(t *testing.T) {
	cache := newTestCache(t)
	in := cacheEntry("u1", "a.jpg", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cache.Append(in)

	entries := cache.ReadAll()
	require.Len(t, entries, 1)
	out := entries[0]
	assert.Equal(t, in.UserID, out.UserID)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	require.Len(t, out.Detections, 1)
	require.NotNil(t, out.Detections[0].BoundingBox)
	assert.Equal(t, 3.0, out.Detections[0].BoundingBox.Width)
}

func TestCorruptContentIsTreatedAsEmpty(t *testing.T) {
	cache := newTestCache(t)
	cache.Append(cacheEntry("u1", "a.jpg", time.Now()))

	// Clobber the stored list with undecodable bytes
	require.NoError(t, cache.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey, []byte("{definitely not json"))
	}))

	assert.Empty(t, cache.ReadAll())
}

func TestAppendAfterCorruptionStartsFresh(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey, []byte("garbage"))
	}))

	cache.Append(cacheEntry("u1", "fresh.jpg", time.Now()))

	entries := cache.ReadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh.jpg", entries[0].Filename)
}
