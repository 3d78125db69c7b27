// Package query derives filtered views and statistics over a reconciled
// history. Pure functions, no I/O.
package query

import (
	"strings"

	"roadwatch/internal/models"
)

// Category filter values accepted by FilterByCategory.
const (
	CategoryAll          = "all"
	CategoryViolations   = "violations"
	CategoryClean        = "clean"
	CategoryHelmet       = "helmet"
	CategoryTripleRiding = "tripleRiding"
)

// Summary holds per-category counts over a history view. Helmet and
// triple-riding counts are not mutually exclusive: one entry can carry
// both violation types.
type Summary struct {
	Total          int `json:"total"`
	WithViolations int `json:"with_violations"`
	Clean          int `json:"clean"`
	Helmet         int `json:"helmet"`
	TripleRiding   int `json:"triple_riding"`
}

// FilterByText keeps entries whose filename contains the substring,
// case-insensitively. An empty substring keeps everything.
func FilterByText(entries []models.HistoryEntry, substring string) []models.HistoryEntry {
	if substring == "" {
		return entries
	}
	needle := strings.ToLower(substring)

	var out []models.HistoryEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Filename), needle) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByCategory keeps entries matching the category. Unknown categories
// behave like "all".
func FilterByCategory(entries []models.HistoryEntry, category string) []models.HistoryEntry {
	if category == "" || category == CategoryAll {
		return entries
	}

	var out []models.HistoryEntry
	for _, e := range entries {
		if matchesCategory(e, category) {
			out = append(out, e)
		}
	}
	return out
}

func matchesCategory(e models.HistoryEntry, category string) bool {
	switch category {
	case CategoryViolations:
		return e.HasViolation()
	case CategoryClean:
		return !e.HasViolation()
	case CategoryHelmet:
		return hasDetectionType(e, "helmet")
	case CategoryTripleRiding:
		return hasDetectionType(e, "triple")
	default:
		return true
	}
}

func hasDetectionType(e models.HistoryEntry, fragment string) bool {
	for _, d := range e.Detections {
		if strings.Contains(strings.ToLower(d.Type), fragment) {
			return true
		}
	}
	return false
}

// Summarize computes the category counts in a single pass.
func Summarize(entries []models.HistoryEntry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		if e.HasViolation() {
			s.WithViolations++
		} else {
			s.Clean++
		}
		if hasDetectionType(e, "helmet") {
			s.Helmet++
		}
		if hasDetectionType(e, "triple") {
			s.TripleRiding++
		}
	}
	return s
}
