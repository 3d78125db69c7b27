package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadwatch/internal/models"
	"roadwatch/internal/recordstore"
)

type fakeRemote struct {
	records []recordstore.KeyedEntry
	err     error
	prefix  string
}

func (f *fakeRemote) ScanByPrefix(_ context.Context, _ string, prefix string) ([]recordstore.KeyedEntry, error) {
	f.prefix = prefix
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeLocal struct {
	entries []models.HistoryEntry
}

func (f *fakeLocal) ReadAll() []models.HistoryEntry {
	return f.entries
}

func mkEntry(userID, filename string, ts time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		UserID:    userID,
		Filename:  filename,
		MediaType: "image/jpeg",
		Detections: []models.DetectionRecord{
			{Type: models.NoViolation, Confidence: 0.95},
		},
		Timestamp: ts,
		Processed: true,
	}
}

func keyed(e models.HistoryEntry) recordstore.KeyedEntry {
	return recordstore.KeyedEntry{Key: models.RecordKey(e.UserID, e.Timestamp), Entry: e}
}

func TestGetHistoryScansUserPrefix(t *testing.T) {
	remote := &fakeRemote{}
	r := NewReconciler(remote, &fakeLocal{}, zap.NewNop())

	r.GetHistory(context.Background(), "u1", "tok")
	assert.Equal(t, "history:u1:", remote.prefix)
}

func TestGetHistoryDeduplicatesRemoteWins(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	shared := mkEntry("u1", "a.jpg", ts)
	localOnly := mkEntry("u1", "b.jpg", ts.Add(-time.Hour))

	remote := &fakeRemote{records: []recordstore.KeyedEntry{keyed(shared)}}
	local := &fakeLocal{entries: []models.HistoryEntry{shared, localOnly}}
	r := NewReconciler(remote, local, zap.NewNop())

	merged, degraded := r.GetHistory(context.Background(), "u1", "tok")
	require.False(t, degraded)
	require.Len(t, merged, 2)

	assert.Equal(t, "a.jpg", merged[0].Filename)
	assert.Equal(t, models.OriginRemote, merged[0].Origin)
	assert.Equal(t, "b.jpg", merged[1].Filename)
	assert.Equal(t, models.OriginLocalFallback, merged[1].Origin)
}

func TestGetHistoryOrdersMostRecentFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e1 := mkEntry("u1", "old.jpg", base)
	e2 := mkEntry("u1", "new.jpg", base.Add(time.Hour))
	e3 := mkEntry("u1", "middle.jpg", base.Add(30*time.Minute))

	remote := &fakeRemote{records: []recordstore.KeyedEntry{keyed(e1), keyed(e2)}}
	local := &fakeLocal{entries: []models.HistoryEntry{e3}}
	r := NewReconciler(remote, local, zap.NewNop())

	merged, _ := r.GetHistory(context.Background(), "u1", "tok")
	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Timestamp.After(merged[i-1].Timestamp),
			"entries must be ordered most recent first")
	}
	assert.Equal(t, "new.jpg", merged[0].Filename)
}

func TestGetHistoryTimestampTieKeepsRemoteFirst(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	remoteEntry := mkEntry("u1", "remote.jpg", ts)
	localEntry := mkEntry("u1", "local.jpg", ts)

	remote := &fakeRemote{records: []recordstore.KeyedEntry{keyed(remoteEntry)}}
	local := &fakeLocal{entries: []models.HistoryEntry{localEntry}}
	r := NewReconciler(remote, local, zap.NewNop())

	merged, _ := r.GetHistory(context.Background(), "u1", "tok")
	require.Len(t, merged, 2)
	assert.Equal(t, models.OriginRemote, merged[0].Origin)
	assert.Equal(t, models.OriginLocalFallback, merged[1].Origin)
}

func TestGetHistoryDegradesOnRemoteFailure(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	localEntry := mkEntry("u1", "a.jpg", ts)

	for _, remoteErr := range []error{models.ErrUnavailable, models.ErrUnauthorized} {
		remote := &fakeRemote{err: remoteErr}
		local := &fakeLocal{entries: []models.HistoryEntry{localEntry}}
		r := NewReconciler(remote, local, zap.NewNop())

		merged, degraded := r.GetHistory(context.Background(), "u1", "tok")
		assert.True(t, degraded)
		require.Len(t, merged, 1)
		assert.Equal(t, "a.jpg", merged[0].Filename)
		assert.Equal(t, models.OriginLocalFallback, merged[0].Origin)
	}
}

func TestGetHistoryFiltersOtherUsers(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	local := &fakeLocal{entries: []models.HistoryEntry{
		mkEntry("u1", "mine.jpg", ts),
		mkEntry("u2", "theirs.jpg", ts),
	}}
	r := NewReconciler(&fakeRemote{}, local, zap.NewNop())

	merged, _ := r.GetHistory(context.Background(), "u1", "tok")
	require.Len(t, merged, 1)
	for _, e := range merged {
		assert.Equal(t, "u1", e.UserID)
	}
}

func TestGetHistoryIsIdempotent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	shared := mkEntry("u1", "a.jpg", base)

	remote := &fakeRemote{records: []recordstore.KeyedEntry{keyed(shared)}}
	local := &fakeLocal{entries: []models.HistoryEntry{
		shared,
		mkEntry("u1", "b.jpg", base.Add(time.Minute)),
	}}
	r := NewReconciler(remote, local, zap.NewNop())

	first, firstDegraded := r.GetHistory(context.Background(), "u1", "tok")
	second, secondDegraded := r.GetHistory(context.Background(), "u1", "tok")
	assert.Equal(t, first, second)
	assert.Equal(t, firstDegraded, secondDegraded)
}

func TestGetHistoryEmptyStores(t *testing.T) {
	r := NewReconciler(&fakeRemote{}, &fakeLocal{}, zap.NewNop())

	merged, degraded := r.GetHistory(context.Background(), "u1", "tok")
	assert.Empty(t, merged)
	assert.False(t, degraded)
}
