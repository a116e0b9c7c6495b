package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// StallFraction is the share of samples where the chain moves slower than
// threshold.
type StallFraction struct {
	name      string
	threshold float64
	stalls    int
	samples   int
}

func NewStallFraction(threshold float64) *StallFraction {
	return &StallFraction{
		name:      "stall_fraction",
		threshold: threshold,
	}
}

func (s *StallFraction) Name() string {
	return s.name
}

func (s *StallFraction) Observe(snap *dynamo.Snapshot) {
	s.samples++
	if math.Abs(snap.ChainSpeed) < s.threshold {
		s.stalls++
	}
}

func (s *StallFraction) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.stalls) / float64(s.samples)
}

func (s *StallFraction) Reset() {
	s.stalls = 0
	s.samples = 0
}
