package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordKeyLayout(t *testing.T) {
	ts := time.UnixMilli(1717243200000).UTC()
	assert.Equal(t, "history:u1:1717243200000", RecordKey("u1", ts))
	assert.Equal(t, "history:u1:", UserPrefix("u1"))
	assert.True(t, len(RecordKey("u1", ts)) > len(UserPrefix("u1")))
}

func TestIdentityKeyMatchesAcrossOrigins(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	remote := HistoryEntry{UserID: "u1", Filename: "a.jpg", Timestamp: ts, Origin: OriginRemote}
	local := HistoryEntry{UserID: "u1", Filename: "a.jpg", Timestamp: ts, Origin: OriginLocalFallback}

	// Origin and detections are not part of identity
	local.Detections = []DetectionRecord{{Type: HelmetViolation, Confidence: 0.8}}
	assert.Equal(t, remote.IdentityKey(), local.IdentityKey())
}

func TestIdentityKeyDistinguishesFields(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	base := HistoryEntry{UserID: "u1", Filename: "a.jpg", Timestamp: ts}

	otherUser := base
	otherUser.UserID = "u2"
	assert.NotEqual(t, base.IdentityKey(), otherUser.IdentityKey())

	otherFile := base
	otherFile.Filename = "b.jpg"
	assert.NotEqual(t, base.IdentityKey(), otherFile.IdentityKey())

	otherTime := base
	otherTime.Timestamp = ts.Add(time.Millisecond)
	assert.NotEqual(t, base.IdentityKey(), otherTime.IdentityKey())
}

func TestHasViolation(t *testing.T) {
	clean := HistoryEntry{Detections: []DetectionRecord{{Type: NoViolation}}}
	assert.False(t, clean.HasViolation())

	dirty := HistoryEntry{Detections: []DetectionRecord{{Type: NoViolation}, {Type: TripleRiding}}}
	assert.True(t, dirty.HasViolation())
}
