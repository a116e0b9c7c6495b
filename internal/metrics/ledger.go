package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// Flows are the energy transfers of a single tick, in joules. Drag, clutch
// and friction are losses and are non-negative.
type Flows struct {
	Buoyant    float64
	Gravity    float64
	Drag       float64
	Compressor float64
	Generator  float64
	Clutch     float64
	Friction   float64
}

// Ledger is the running energy account. It accumulates monotonically until
// Reset and checks that the mechanical terms match the kinetic energy change.
type Ledger struct {
	totals    dynamo.LedgerTotals
	initialKE float64
	tolerance float64
}

func NewLedger(tolerance float64) *Ledger {
	return &Ledger{tolerance: tolerance}
}

// Reset clears the totals and takes ke as the reference kinetic energy.
func (l *Ledger) Reset(ke float64) {
	l.totals = dynamo.LedgerTotals{KineticEnergyJ: ke}
	l.initialKE = ke
}

// SetTolerance changes the relative residual tolerance.
func (l *Ledger) SetTolerance(tol float64) { l.tolerance = tol }

// Record adds one tick of flows. ke is the kinetic energy after the tick.
func (l *Ledger) Record(f Flows, ke, t float64) {
	l.totals.BuoyantWorkJ += f.Buoyant
	l.totals.GravityWorkJ += f.Gravity
	l.totals.DragLossJ += f.Drag
	l.totals.CompressorEnergyJ += f.Compressor
	l.totals.GeneratorEnergyJ += f.Generator
	l.totals.ClutchLossJ += f.Clutch
	l.totals.FrictionLossJ += f.Friction
	l.totals.NetEnergyJ = l.totals.GeneratorEnergyJ - l.totals.CompressorEnergyJ
	l.totals.KineticEnergyJ = ke
	l.totals.Timestamp = t
	l.totals.ResidualJ = l.residual()
}

func (l *Ledger) residual() float64 {
	t := l.totals
	mech := t.BuoyantWorkJ + t.GravityWorkJ - t.DragLossJ - t.GeneratorEnergyJ - t.ClutchLossJ - t.FrictionLossJ
	return mech - (t.KineticEnergyJ - l.initialKE)
}

// Throughput is the total magnitude of energy moved through the chain, the
// scale against which the residual is judged.
func (l *Ledger) Throughput() float64 {
	t := l.totals
	return math.Abs(t.BuoyantWorkJ) + math.Abs(t.GravityWorkJ) + t.DragLossJ +
		t.GeneratorEnergyJ + t.ClutchLossJ + t.FrictionLossJ
}

// Check fails when the residual exceeds tolerance relative to throughput.
func (l *Ledger) Check() error {
	limit := l.tolerance * math.Max(1, l.Throughput())
	r := l.totals.ResidualJ
	if math.IsNaN(r) || math.Abs(r) > limit {
		return fmt.Errorf("%w: ledger residual %.6g J exceeds %.3g J", dynamo.ErrPhysicsInvariant, r, limit)
	}
	return nil
}

func (l *Ledger) Totals() dynamo.LedgerTotals { return l.totals }

// Balanced reports whether delivered plus dissipated energy stays within what
// buoyancy, gravity and the compressor supplied, plus slack.
func Balanced(t dynamo.LedgerTotals, slack float64) bool {
	out := t.GeneratorEnergyJ + t.DragLossJ
	in := t.BuoyantWorkJ + t.GravityWorkJ + t.CompressorEnergyJ
	return out <= in+slack
}
