package detector

import (
	"context"
	"math/rand"
	"sync"

	"roadwatch/internal/models"
)

// Trigger probabilities and confidence band for simulated detections.
const (
	helmetProbability = 0.5
	tripleProbability = 0.3

	simConfidenceMin  = 0.75
	simConfidenceBand = 0.20
)

// Simulator is the secondary Detector: a randomized local stand-in used
// when the oracle is unreachable. It decides each violation class
// independently and fabricates a plausible bounding box per hit.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator with the given seed. Tests pass a fixed
// seed to make runs reproducible.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Detect never fails. If neither violation class triggers, the result is a
// single NoViolation record.
func (s *Simulator) Detect(_ context.Context, _ Media) ([]models.DetectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []models.DetectionRecord
	if s.rng.Float64() < helmetProbability {
		records = append(records, models.DetectionRecord{
			Type:        models.HelmetViolation,
			Confidence:  s.confidence(),
			BoundingBox: s.boundingBox(),
		})
	}
	if s.rng.Float64() < tripleProbability {
		records = append(records, models.DetectionRecord{
			Type:        models.TripleRiding,
			Confidence:  s.confidence(),
			BoundingBox: s.boundingBox(),
		})
	}

	if len(records) == 0 {
		records = append(records, models.DetectionRecord{
			Type:       models.NoViolation,
			Confidence: oracleCleanConfidence,
		})
	}
	return records, nil
}

func (s *Simulator) confidence() float64 {
	return simConfidenceMin + s.rng.Float64()*simConfidenceBand
}

func (s *Simulator) boundingBox() *models.BoundingBox {
	return &models.BoundingBox{
		X:      s.rng.Float64() * 400,
		Y:      s.rng.Float64() * 300,
		Width:  50 + s.rng.Float64()*150,
		Height: 50 + s.rng.Float64()*150,
	}
}
