package detector

import (
	"context"

	"roadwatch/internal/models"
)

// Media is one submitted file, held fully in memory for analysis.
type Media struct {
	Filename string
	MIMEType string
	Content  []byte
}

// IsVideo reports whether the media carries a video MIME type.
func (m Media) IsVideo() bool {
	return len(m.MIMEType) >= 6 && m.MIMEType[:6] == "video/"
}

// Detector produces violation verdicts for a media item. Implementations
// never return an empty record list on success: absence of violations is a
// single NoViolation record.
type Detector interface {
	Detect(ctx context.Context, media Media) ([]models.DetectionRecord, error)
}
