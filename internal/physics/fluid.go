package physics

import (
	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
)

const (
	celsiusToKelvin = 273.15
	gasConstant     = 8.314462618 // J/(mol K)
	airMolarMass    = 0.0289647   // kg/mol
)

// Hypotheses is the single tagged variant of optional physical effects. The
// zero value disables all three.
type Hypotheses struct {
	H1 Nanobubbles
	H2 Thermal
	H3 PulseCoast
}

// Nanobubbles (H1) lowers density and drag on the descending run.
type Nanobubbles struct {
	Enabled                bool
	Fraction               float64
	DensityReductionFactor float64
	DragReduction          float64
}

// Thermal (H2) switches injection to isothermal and boosts ascending buoyancy.
type Thermal struct {
	Enabled bool
	Boost   float64
}

// PulseCoast (H3) toggles the clutch on a fixed timetable.
type PulseCoast struct {
	Enabled bool
	Coast   float64
	Pulse   float64
}

func NewHypotheses(c config.HypothesesConfig) Hypotheses {
	return Hypotheses{
		H1: Nanobubbles{
			Enabled:                c.H1.Enabled,
			Fraction:               c.H1.DensityReduction,
			DensityReductionFactor: c.H1.DensityReductionFactor,
			DragReduction:          c.H1.DragReduction,
		},
		H2: Thermal{Enabled: c.H2.Enabled, Boost: c.H2.ThermalBoost},
		H3: PulseCoast{Enabled: c.H3.Enabled, Coast: c.H3.CoastDuration, Pulse: c.H3.PulseDuration},
	}
}

// Fluid is the ambient water. It changes only through explicit configuration;
// force computation only reads it.
type Fluid struct {
	Density             float64
	Gravity             float64
	DragCoefficient     float64
	CrossSectionArea    float64
	Temperature         float64 // Celsius
	AtmosphericPressure float64

	NanobubbleFraction     float64
	DensityReductionFactor float64
	DragReduction          float64
	ThermalBoost           float64
}

// NewFluid builds the environment with the hypothesis modifiers folded in.
// Disabled hypotheses contribute nothing.
func NewFluid(c config.FluidConfig, h Hypotheses) Fluid {
	f := Fluid{
		Density:             c.Density,
		Gravity:             c.Gravity,
		DragCoefficient:     c.DragCoefficient,
		CrossSectionArea:    c.CrossSectionArea,
		Temperature:         c.Temperature,
		AtmosphericPressure: c.AtmosphericPressure,
	}
	if h.H1.Enabled {
		f.NanobubbleFraction = h.H1.Fraction
		f.DensityReductionFactor = h.H1.DensityReductionFactor
		f.DragReduction = h.H1.DragReduction
	}
	if h.H2.Enabled {
		f.ThermalBoost = h.H2.Boost
	}
	return f
}

// DensityReduction is the fractional density drop on the descending run.
func (f Fluid) DensityReduction() float64 {
	return f.NanobubbleFraction * f.DensityReductionFactor
}

// EffectiveDensity is the base density on the ascending run and the
// nanobubble-reduced density on the descending run.
func (f Fluid) EffectiveDensity(side dynamo.Side) float64 {
	if side == dynamo.Descending {
		return f.Density * (1 - f.DensityReduction())
	}
	return f.Density
}

// EffectiveDragCoefficient mirrors EffectiveDensity for Cd.
func (f Fluid) EffectiveDragCoefficient(side dynamo.Side) float64 {
	if side == dynamo.Descending {
		return f.DragCoefficient * (1 - f.DragReduction)
	}
	return f.DragCoefficient
}

// PressureAt is the absolute hydrostatic pressure depth metres below the surface.
func (f Fluid) PressureAt(depth float64) float64 {
	return f.AtmosphericPressure + f.Density*f.Gravity*depth
}

// AirMass is the mass of air occupying volume at pressure and the fluid temperature.
func (f Fluid) AirMass(pressure, volume float64) float64 {
	return pressure * volume * airMolarMass / (gasConstant * (f.Temperature + celsiusToKelvin))
}
