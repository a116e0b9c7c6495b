package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// MeanPower averages one power channel of the snapshot.
type MeanPower struct {
	name    string
	pick    func(s *dynamo.Snapshot) float64
	sum     float64
	samples int
}

func NewMeanNetPower() *MeanPower {
	return &MeanPower{name: "mean_net_power", pick: func(s *dynamo.Snapshot) float64 { return s.NetPower }}
}

func NewMeanGeneratorPower() *MeanPower {
	return &MeanPower{name: "mean_generator_power", pick: func(s *dynamo.Snapshot) float64 { return s.GeneratorPower }}
}

func NewMeanCompressorPower() *MeanPower {
	return &MeanPower{name: "mean_compressor_power", pick: func(s *dynamo.Snapshot) float64 { return s.CompressorPower }}
}

func (m *MeanPower) Name() string { return m.name }

func (m *MeanPower) Observe(s *dynamo.Snapshot) {
	m.sum += m.pick(s)
	m.samples++
}

func (m *MeanPower) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanPower) Reset() {
	m.sum = 0
	m.samples = 0
}

// ConservationDrift is the largest ledger residual seen, relative to the
// energy throughput at that point.
type ConservationDrift struct {
	name     string
	maxDrift float64
}

func NewConservationDrift() *ConservationDrift {
	return &ConservationDrift{name: "conservation_drift"}
}

func (c *ConservationDrift) Name() string { return c.name }

func (c *ConservationDrift) Observe(s *dynamo.Snapshot) {
	t := s.Ledger
	scale := math.Abs(t.BuoyantWorkJ) + math.Abs(t.GravityWorkJ) + t.DragLossJ +
		t.GeneratorEnergyJ + t.ClutchLossJ + t.FrictionLossJ
	drift := math.Abs(t.ResidualJ) / math.Max(1, scale)
	c.maxDrift = math.Max(c.maxDrift, drift)
}

func (c *ConservationDrift) Value() float64 { return c.maxDrift }

func (c *ConservationDrift) Reset() { c.maxDrift = 0 }

// NetEnergy reports the final cumulative net energy.
type NetEnergy struct {
	name string
	last float64
}

func NewNetEnergy() *NetEnergy { return &NetEnergy{name: "net_energy"} }

func (n *NetEnergy) Name() string { return n.name }

func (n *NetEnergy) Observe(s *dynamo.Snapshot) { n.last = s.Ledger.NetEnergyJ }

func (n *NetEnergy) Value() float64 { return n.last }

func (n *NetEnergy) Reset() { n.last = 0 }
