package models

import (
	"fmt"
	"time"
)

// Violation types emitted by the detectors. The set is open: unknown
// types coming back from the oracle are stored as-is.
const (
	NoViolation       = "No Violation"
	HelmetViolation   = "Helmet Violation"
	TripleRiding      = "Triple Riding"
	ViolationDetected = "Violation Detected"
)

// Entry provenance.
const (
	OriginRemote        = "remote"
	OriginLocalFallback = "local-fallback"
)

// BoundingBox localizes a detection in source-media pixel coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetectionRecord is a single finding from the analysis of one media item.
// BoundingBox is nil for verdicts that are not localized (e.g. whole-video).
type DetectionRecord struct {
	Type        string       `json:"violation_type"`
	Confidence  float64      `json:"confidence"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// HistoryEntry is one submission and its results. Entries are created once,
// at submission completion, and never mutated afterwards.
type HistoryEntry struct {
	UserID     string            `json:"user_id"`
	Filename   string            `json:"filename"`
	MediaType  string            `json:"media_type"`
	Detections []DetectionRecord `json:"detections"`
	Timestamp  time.Time         `json:"timestamp"`
	Processed  bool              `json:"processed"`
	Origin     string            `json:"origin"`
}

// IdentityKey identifies a logical submission. Two entries with the same
// identity key are the same submission regardless of which store produced
// them; no content hashing is involved.
func (e HistoryEntry) IdentityKey() string {
	return fmt.Sprintf("%s\x00%s\x00%d", e.UserID, e.Filename, e.Timestamp.UnixMilli())
}

// HasViolation reports whether any detection is something other than a
// clean NoViolation verdict.
func (e HistoryEntry) HasViolation() bool {
	for _, d := range e.Detections {
		if d.Type != NoViolation {
			return true
		}
	}
	return false
}

// RecordKey builds the record-store key for a user's submission:
// history:{userId}:{submissionEpochMillis}.
func RecordKey(userID string, ts time.Time) string {
	return fmt.Sprintf("history:%s:%d", userID, ts.UnixMilli())
}

// UserPrefix is the scan prefix covering exactly one user's entries.
func UserPrefix(userID string) string {
	return fmt.Sprintf("history:%s:", userID)
}
