// Package history merges the two history backends into one view: the
// authoritative remote record store and the device-local fallback cache.
package history

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"roadwatch/internal/models"
	"roadwatch/internal/recordstore"
)

// RemoteScanner is the slice of the record-store client the reconciler
// needs.
type RemoteScanner interface {
	ScanByPrefix(ctx context.Context, credential, prefix string) ([]recordstore.KeyedEntry, error)
}

// LocalReader is the slice of the local fallback cache the reconciler
// needs.
type LocalReader interface {
	ReadAll() []models.HistoryEntry
}

// Reconciler produces the deduplicated, time-ordered history for one user
// from both backends. It deliberately trades consistency for availability:
// a failing remote store never fails the read, it only degrades it.
type Reconciler struct {
	remote RemoteScanner
	local  LocalReader
	logger *zap.Logger
}

// NewReconciler creates a reconciler over the two stores.
func NewReconciler(remote RemoteScanner, local LocalReader, logger *zap.Logger) *Reconciler {
	return &Reconciler{remote: remote, local: local, logger: logger}
}

// GetHistory returns the merged history for userID, most recent first,
// plus a degraded flag that is true when the remote contribution was
// unavailable. It never returns an error: remote failures of any kind
// (unreachable, unauthorized) reduce to an empty remote contribution.
//
// Merge rules:
//   - remote entries are authoritative; a local entry sharing the identity
//     key (userID, filename, timestamp) of a remote entry is dropped
//   - entries are re-tagged by the store they came from
//   - ties on timestamp keep remote entries ahead of local ones
func (r *Reconciler) GetHistory(ctx context.Context, userID, credential string) ([]models.HistoryEntry, bool) {
	degraded := false

	var merged []models.HistoryEntry
	seen := make(map[string]struct{})

	scanned, err := r.remote.ScanByPrefix(ctx, credential, models.UserPrefix(userID))
	if err != nil {
		r.logger.Warn("Remote history unavailable, serving local entries only",
			zap.String("user_id", userID), zap.Error(err))
		degraded = true
	}
	for _, rec := range scanned {
		entry := rec.Entry
		entry.Origin = models.OriginRemote
		merged = append(merged, entry)
		seen[entry.IdentityKey()] = struct{}{}
	}

	for _, entry := range r.local.ReadAll() {
		if entry.UserID != userID {
			continue
		}
		if _, dup := seen[entry.IdentityKey()]; dup {
			continue
		}
		entry.Origin = models.OriginLocalFallback
		merged = append(merged, entry)
	}

	// Stable sort keeps the remote-before-local order on equal timestamps.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	return merged, degraded
}
