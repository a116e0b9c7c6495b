package physics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// Floater is one container on the chain. FillProgress is the air fraction:
// 0 when water-filled (Empty), 1 when air-filled (Filled).
type Floater struct {
	ID        int
	Volume    float64
	MassEmpty float64 // shell only
	MassFull  float64 // shell plus internal water

	State        dynamo.FloaterState
	FillProgress float64
	Position     float64
	Velocity     float64 // shared chain speed, set each tick
}

// Mass interpolates on the water fraction: MassFull when water-filled,
// MassEmpty when air-filled.
func (f *Floater) Mass() float64 {
	return f.MassFull - f.FillProgress*(f.MassFull-f.MassEmpty)
}

// ComputeForces evaluates buoyancy, weight and drag at the floater's current
// position and velocity. It reads f, fluid and loop and modifies nothing.
func (f *Floater) ComputeForces(fluid Fluid, loop Loop) dynamo.Forces {
	side := loop.Side(f.Position)
	rho := fluid.EffectiveDensity(side)

	buoyant := rho * f.Volume * loop.SubmergedFraction(f.Position) * fluid.Gravity
	if side == dynamo.Ascending {
		buoyant *= 1 + fluid.ThermalBoost*f.FillProgress
	}

	cd := fluid.EffectiveDragCoefficient(side)
	drag := -0.5 * cd * rho * fluid.CrossSectionArea * f.Velocity * math.Abs(f.Velocity)

	return dynamo.Forces{
		Buoyant: buoyant,
		Weight:  f.Mass() * fluid.Gravity,
		Drag:    drag,
	}
}

// BeginFill starts air injection. Only an Empty floater can start filling.
func (f *Floater) BeginFill() bool {
	if f.State != dynamo.Empty {
		return false
	}
	f.State = dynamo.Filling
	f.FillProgress = 0
	return true
}

// BeginVent opens the vent. Only a Filled floater can vent.
func (f *Floater) BeginVent() bool {
	if f.State != dynamo.Filled {
		return false
	}
	f.State = dynamo.Venting
	return true
}

// CompleteFill finishes a fill that is still running when the floater reaches
// the top threshold.
func (f *Floater) CompleteFill() {
	if f.State == dynamo.Filling {
		f.State = dynamo.Filled
		f.FillProgress = 1
	}
}

// CompleteVent finishes a vent that is still running when the floater reaches
// the bottom threshold.
func (f *Floater) CompleteVent() {
	if f.State == dynamo.Venting {
		f.State = dynamo.Empty
		f.FillProgress = 0
	}
}

// Progress advances an in-flight fill or vent by dt. Rates are air fraction
// per second.
func (f *Floater) Progress(dt, fillRate, ventRate float64) {
	switch f.State {
	case dynamo.Filling:
		f.FillProgress += fillRate * dt
		if f.FillProgress >= 1 {
			f.FillProgress = 1
			f.State = dynamo.Filled
		}
	case dynamo.Venting:
		f.FillProgress -= ventRate * dt
		if f.FillProgress <= 0 {
			f.FillProgress = 0
			f.State = dynamo.Empty
		}
	}
}

// Snapshot copies the floater with the forces computed this tick.
func (f *Floater) Snapshot(loop Loop, forces dynamo.Forces) dynamo.FloaterSnapshot {
	return dynamo.FloaterSnapshot{
		ID:           f.ID,
		Position:     f.Position,
		Height:       loop.HeightAt(f.Position),
		Side:         loop.Side(f.Position),
		Velocity:     f.Velocity,
		State:        f.State,
		FillProgress: f.FillProgress,
		Mass:         f.Mass(),
		Forces:       forces,
	}
}

// TerminalVelocity is the speed at which drag balances the net vertical force
// on a floater moving alone through fluid on the given side. It returns 0 when
// the net force is zero or drag is disabled.
func TerminalVelocity(f *Floater, fluid Fluid, side dynamo.Side) float64 {
	rho := fluid.EffectiveDensity(side)
	cd := fluid.EffectiveDragCoefficient(side)
	net := math.Abs(rho*f.Volume*fluid.Gravity - f.Mass()*fluid.Gravity)
	k := 0.5 * cd * rho * fluid.CrossSectionArea
	if k <= 0 || net == 0 {
		return 0
	}
	return math.Sqrt(net / k)
}
