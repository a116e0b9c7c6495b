package config

import (
	"errors"
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

const absoluteZeroC = -273.15

// Validate checks every field and returns all violations joined. Each
// violation is a *dynamo.ConfigError.
func (c Config) Validate() error {
	v := &validator{}

	v.check("floaters.count", c.Floaters.Count >= 1 && c.Floaters.Count <= 1000, "in [1, 1000]", c.Floaters.Count)
	v.positive("floaters.volume", c.Floaters.Volume)
	v.positive("floaters.mass_empty", c.Floaters.MassEmpty)
	v.check("floaters.mass_full", c.Floaters.MassFull > c.Floaters.MassEmpty, "> mass_empty", c.Floaters.MassFull)
	v.positive("floaters.fill_rate", c.Floaters.FillRate)
	v.positive("floaters.vent_rate", c.Floaters.VentRate)

	v.positive("tank.height", c.Tank.Height)
	v.check("tank.transition_arc", c.Tank.TransitionArc >= 0 && c.Tank.TransitionArc < c.Tank.Height/2, "in [0, height/2)", c.Tank.TransitionArc)
	v.check("tank.apex_submersion", c.Tank.ApexSubmersion >= 0 && c.Tank.ApexSubmersion <= 1, "in [0, 1]", c.Tank.ApexSubmersion)
	v.check("tank.injection_zone", c.Tank.InjectionZone > 0 && c.Tank.InjectionZone < c.Tank.Height, "in (0, height)", c.Tank.InjectionZone)

	v.positive("fluid.density", c.Fluid.Density)
	v.positive("fluid.gravity", c.Fluid.Gravity)
	v.nonNegative("fluid.drag_coefficient", c.Fluid.DragCoefficient)
	v.positive("fluid.cross_section_area", c.Fluid.CrossSectionArea)
	v.check("fluid.temperature", c.Fluid.Temperature > absoluteZeroC, "above absolute zero", c.Fluid.Temperature)
	v.positive("fluid.atmospheric_pressure", c.Fluid.AtmosphericPressure)

	p := c.Pneumatics
	v.positive("pneumatics.tank_volume", p.TankVolume)
	v.nonNegative("pneumatics.compressor_power", p.CompressorPower)
	if finite(c.Fluid.Density) && finite(c.Tank.Height) {
		v.check("pneumatics.min_pressure", p.MinPressure >= c.InjectionPressure(), ">= injection pressure at tank bottom", p.MinPressure)
	}
	v.check("pneumatics.max_pressure", p.MaxPressure >= p.MinPressure, ">= min_pressure", p.MaxPressure)
	v.check("pneumatics.initial_pressure", p.InitialPressure >= 0 && p.InitialPressure <= p.MaxPressure, "in [0, max_pressure]", p.InitialPressure)
	v.check("pneumatics.efficiency", p.Efficiency > 0 && p.Efficiency <= 1, "in (0, 1]", p.Efficiency)
	v.check("pneumatics.gamma", p.Gamma > 1, "> 1", p.Gamma)

	v.positive("drivetrain.sprocket_radius", c.Drivetrain.SprocketRadius)
	v.positive("drivetrain.flywheel_inertia", c.Drivetrain.FlywheelInertia)
	v.nonNegative("drivetrain.flywheel_friction", c.Drivetrain.FlywheelFriction)

	g := c.Generator
	v.nonNegative("generator.target_power", g.TargetPower)
	v.positive("generator.soft_start_omega", g.SoftStartOmega)
	v.check("generator.max_omega", g.MaxOmega > g.SoftStartOmega, "> soft_start_omega", g.MaxOmega)
	v.nonNegative("generator.overspeed_gain", g.OverspeedGain)
	v.positive("generator.max_torque", g.MaxTorque)

	h := c.Hypotheses
	v.check("hypotheses.h1.density_reduction", h.H1.DensityReduction >= 0 && h.H1.DensityReduction < 1, "in [0, 1)", h.H1.DensityReduction)
	v.check("hypotheses.h1.density_reduction_factor", h.H1.DensityReductionFactor >= 0 && h.H1.DensityReduction*h.H1.DensityReductionFactor < 1, ">= 0 with fraction*factor < 1", h.H1.DensityReductionFactor)
	v.check("hypotheses.h1.drag_reduction", h.H1.DragReduction >= 0 && h.H1.DragReduction < 1, "in [0, 1)", h.H1.DragReduction)
	v.check("hypotheses.h2.thermal_boost", h.H2.ThermalBoost >= 0 && h.H2.ThermalBoost <= 1, "in [0, 1]", h.H2.ThermalBoost)
	if h.H3.Enabled {
		v.positive("hypotheses.h3.coast_duration", h.H3.CoastDuration)
		v.positive("hypotheses.h3.pulse_duration", h.H3.PulseDuration)
	}

	switch c.Control.Mode {
	case "", "none", "freewheel":
	case "pid":
		v.nonNegative("control.target_omega", c.Control.TargetOmega)
	default:
		v.check("control.mode", false, "one of none, freewheel, pid", c.Control.Mode)
	}

	v.positive("sim.dt", c.Sim.Dt)
	v.positive("sim.duration", c.Sim.Duration)
	v.check("sim.record_every", c.Sim.RecordEvery >= 1, ">= 1", c.Sim.RecordEvery)
	v.positive("sim.conservation_tolerance", c.Sim.ConservationTolerance)

	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) check(field string, ok bool, constraint string, value any) {
	if !ok {
		v.errs = append(v.errs, &dynamo.ConfigError{Field: field, Constraint: constraint, Value: value})
	}
}

func (v *validator) positive(field string, x float64) {
	v.check(field, finite(x) && x > 0, "> 0", x)
}

func (v *validator) nonNegative(field string, x float64) {
	v.check(field, finite(x) && x >= 0, ">= 0", x)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
