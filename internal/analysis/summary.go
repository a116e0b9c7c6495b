package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/buoysim/internal/storage"
)

// Summary condenses a trace into the figures reported after a run.
type Summary struct {
	Samples  int
	Duration float64

	MeanChainSpeed float64
	StdChainSpeed  float64
	PeakChainSpeed float64

	MeanGeneratorPower  float64
	PeakGeneratorPower  float64
	MeanCompressorPower float64
	MeanNetPower        float64

	NetEnergyJ         float64
	Efficiency         float64 // generator energy over compressor energy
	DragShare          float64 // drag loss over buoyant work
	EnergyPerInjection float64
	ClutchDuty         float64
	MinTankPressure    float64
	DominantHz         float64 // chain speed oscillation
	MaxResidualJ       float64
	Skips              int
}

// Summarize computes a Summary from trace rows in tick order. Power means
// are taken from cumulative energies so sparse sampling does not bias them.
func Summarize(rows []storage.TraceRow) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}
	first, last := rows[0], rows[len(rows)-1]

	n := len(rows)
	speed := make([]float64, n)
	gen := make([]float64, n)
	tank := make([]float64, n)
	residual := make([]float64, n)
	engaged := 0
	for i, r := range rows {
		speed[i] = r.ChainSpeed
		gen[i] = r.GeneratorPower
		tank[i] = r.TankPressure
		residual[i] = math.Abs(r.ResidualJ)
		if r.ClutchEngaged {
			engaged++
		}
	}

	s.Samples = n
	s.Duration = last.Time - first.Time
	s.MeanChainSpeed, s.StdChainSpeed = stat.MeanStdDev(speed, nil)
	s.PeakChainSpeed = floats.Max(speed)
	s.PeakGeneratorPower = floats.Max(gen)
	s.MinTankPressure = floats.Min(tank)
	s.MaxResidualJ = floats.Max(residual)
	s.ClutchDuty = float64(engaged) / float64(n)
	s.NetEnergyJ = last.NetEnergyJ
	s.Skips = last.Skips

	if s.Duration > 0 {
		s.MeanGeneratorPower = (last.GeneratorJ - first.GeneratorJ) / s.Duration
		s.MeanCompressorPower = (last.CompressorJ - first.CompressorJ) / s.Duration
		s.MeanNetPower = s.MeanGeneratorPower - s.MeanCompressorPower
	}
	if last.CompressorJ > 0 {
		s.Efficiency = last.GeneratorJ / last.CompressorJ
	}
	if last.BuoyantWorkJ > 0 {
		s.DragShare = last.DragLossJ / last.BuoyantWorkJ
	}
	if last.Injections > 0 {
		s.EnergyPerInjection = last.CompressorJ / float64(last.Injections)
	}
	if n > 2 {
		s.DominantHz, _ = DominantFrequency(speed, s.Duration/float64(n-1))
	}
	return s
}
