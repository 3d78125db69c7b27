// Package pipeline orchestrates a submission: detection (oracle primary,
// simulator secondary) followed by a best-effort dual write to the remote
// record store and the local fallback cache.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roadwatch/internal/detector"
	"roadwatch/internal/models"
)

// MaxUploadBytes caps submitted media size.
const MaxUploadBytes = 50 << 20 // 50 MiB

// acceptedMIME is the fixed set of media types a submission may carry.
var acceptedMIME = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
}

// Oracle is the primary detector plus the raw analyze call the HTTP layer
// forwards annotated media from.
type Oracle interface {
	Analyze(ctx context.Context, media detector.Media) (*detector.AnalyzeResponse, error)
}

// RemoteWriter records an entry in the remote store.
type RemoteWriter interface {
	Put(ctx context.Context, credential, key string, entry models.HistoryEntry) error
}

// LocalAppender records an entry in the local fallback cache.
type LocalAppender interface {
	Append(entry models.HistoryEntry)
}

// Result is the outcome of one submission. Oracle carries the raw oracle
// response (annotated image, file URL) when the primary path succeeded,
// nil when the simulator produced the verdict.
type Result struct {
	Entry  models.HistoryEntry
	Oracle *detector.AnalyzeResponse
}

// Pipeline runs submissions end to end. The two persistence writes are
// independent fire-and-forget operations with no transactional guarantee:
// losing the remote write leaves a local-only entry that the reconciler
// keeps serving.
type Pipeline struct {
	oracle    Oracle
	simulator detector.Detector
	remote    RemoteWriter
	local     LocalAppender
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline wires the detection chain and the two stores.
func NewPipeline(oracle Oracle, simulator detector.Detector, remote RemoteWriter, local LocalAppender, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		oracle:    oracle,
		simulator: simulator,
		remote:    remote,
		local:     local,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit analyzes one media file and persists the resulting entry. The
// only hard failure is ErrInvalidInput; detection and store failures
// degrade but still yield a usable entry.
func (p *Pipeline) Submit(ctx context.Context, userID, credential string, media detector.Media) (Result, error) {
	if err := validateMedia(media); err != nil {
		return Result{}, err
	}

	var (
		detections []models.DetectionRecord
		oracleResp *detector.AnalyzeResponse
	)
	oracleResp, err := p.oracle.Analyze(ctx, media)
	if err == nil {
		detections = detector.NormalizeVerdict(oracleResp)
	} else {
		p.logger.Warn("Detection oracle failed, falling back to simulator",
			zap.String("filename", media.Filename), zap.Error(err))
		oracleResp = nil
		detections, _ = p.simulator.Detect(ctx, media) // simulator never fails
	}

	origin := models.OriginRemote
	if oracleResp == nil {
		origin = models.OriginLocalFallback
	}

	entry := p.buildEntry(userID, media.Filename, media.MIMEType, detections, origin)
	p.persist(ctx, credential, entry)

	return Result{Entry: entry, Oracle: oracleResp}, nil
}

// Record registers a detection for an already-named file without media
// bytes. With nothing to show the oracle, the simulator decides.
func (p *Pipeline) Record(ctx context.Context, userID, credential, filename, fileType string) (models.HistoryEntry, error) {
	if filename == "" {
		return models.HistoryEntry{}, fmt.Errorf("%w: filename is required", models.ErrInvalidInput)
	}
	if _, ok := acceptedMIME[fileType]; !ok {
		return models.HistoryEntry{}, fmt.Errorf("%w: unsupported media type %q", models.ErrInvalidInput, fileType)
	}

	detections, _ := p.simulator.Detect(ctx, detector.Media{Filename: filename, MIMEType: fileType})
	entry := p.buildEntry(userID, filename, fileType, detections, models.OriginLocalFallback)
	p.persist(ctx, credential, entry)

	return entry, nil
}

func (p *Pipeline) buildEntry(userID, filename, mimeType string, detections []models.DetectionRecord, origin string) models.HistoryEntry {
	return models.HistoryEntry{
		UserID:     userID,
		Filename:   filename,
		MediaType:  mimeType,
		Detections: detections,
		Timestamp:  p.now().UTC(),
		Processed:  true,
		Origin:     origin,
	}
}

// persist performs the best-effort dual write. The local append cannot
// fail the call by contract; the remote put is attempted once and its
// failure only logged.
func (p *Pipeline) persist(ctx context.Context, credential string, entry models.HistoryEntry) {
	p.local.Append(entry)

	key := models.RecordKey(entry.UserID, entry.Timestamp)
	if err := p.remote.Put(ctx, credential, key, entry); err != nil {
		p.logger.Warn("Remote history write failed, entry kept locally only",
			zap.String("key", key), zap.Error(err))
	}
}

func validateMedia(media detector.Media) error {
	if _, ok := acceptedMIME[media.MIMEType]; !ok {
		return fmt.Errorf("%w: unsupported media type %q", models.ErrInvalidInput, media.MIMEType)
	}
	if len(media.Content) == 0 {
		return fmt.Errorf("%w: empty file", models.ErrInvalidInput)
	}
	if len(media.Content) > MaxUploadBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", models.ErrInvalidInput, MaxUploadBytes)
	}
	return nil
}
