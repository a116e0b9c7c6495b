package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// floatParams maps dotted names to the float fields of c.
func (c *Config) floatParams() map[string]*float64 {
	return map[string]*float64{
		"floaters.volume":              &c.Floaters.Volume,
		"floaters.mass_empty":          &c.Floaters.MassEmpty,
		"floaters.mass_full":           &c.Floaters.MassFull,
		"floaters.fill_rate":           &c.Floaters.FillRate,
		"floaters.vent_rate":           &c.Floaters.VentRate,
		"tank.height":                  &c.Tank.Height,
		"tank.transition_arc":          &c.Tank.TransitionArc,
		"tank.apex_submersion":         &c.Tank.ApexSubmersion,
		"tank.injection_zone":          &c.Tank.InjectionZone,
		"fluid.density":                &c.Fluid.Density,
		"fluid.gravity":                &c.Fluid.Gravity,
		"fluid.drag_coefficient":       &c.Fluid.DragCoefficient,
		"fluid.cross_section_area":     &c.Fluid.CrossSectionArea,
		"fluid.temperature":            &c.Fluid.Temperature,
		"fluid.atmospheric_pressure":   &c.Fluid.AtmosphericPressure,
		"pneumatics.tank_volume":       &c.Pneumatics.TankVolume,
		"pneumatics.compressor_power":  &c.Pneumatics.CompressorPower,
		"pneumatics.initial_pressure":  &c.Pneumatics.InitialPressure,
		"pneumatics.min_pressure":      &c.Pneumatics.MinPressure,
		"pneumatics.max_pressure":      &c.Pneumatics.MaxPressure,
		"pneumatics.efficiency":        &c.Pneumatics.Efficiency,
		"pneumatics.gamma":             &c.Pneumatics.Gamma,
		"drivetrain.sprocket_radius":   &c.Drivetrain.SprocketRadius,
		"drivetrain.flywheel_inertia":  &c.Drivetrain.FlywheelInertia,
		"drivetrain.flywheel_friction": &c.Drivetrain.FlywheelFriction,
		"generator.target_power":       &c.Generator.TargetPower,
		"generator.soft_start_omega":   &c.Generator.SoftStartOmega,
		"generator.max_omega":          &c.Generator.MaxOmega,
		"generator.overspeed_gain":     &c.Generator.OverspeedGain,
		"generator.max_torque":         &c.Generator.MaxTorque,
		"h1.density_reduction":         &c.Hypotheses.H1.DensityReduction,
		"h1.density_reduction_factor":  &c.Hypotheses.H1.DensityReductionFactor,
		"h1.drag_reduction":            &c.Hypotheses.H1.DragReduction,
		"h2.thermal_boost":             &c.Hypotheses.H2.ThermalBoost,
		"h3.coast_duration":            &c.Hypotheses.H3.CoastDuration,
		"h3.pulse_duration":            &c.Hypotheses.H3.PulseDuration,
		"control.target_omega":         &c.Control.TargetOmega,
		"control.kp":                   &c.Control.Kp,
		"control.ki":                   &c.Control.Ki,
		"control.kd":                   &c.Control.Kd,
		"sim.dt":                       &c.Sim.Dt,
		"sim.duration":                 &c.Sim.Duration,
		"sim.conservation_tolerance":   &c.Sim.ConservationTolerance,
	}
}

func (c *Config) boolParams() map[string]*bool {
	return map[string]*bool{
		"h1.enabled":                &c.Hypotheses.H1.Enabled,
		"h2.enabled":                &c.Hypotheses.H2.Enabled,
		"h3.enabled":                &c.Hypotheses.H3.Enabled,
		"drivetrain.one_way_clutch": &c.Drivetrain.OneWayClutch,
	}
}

// GetParams implements dynamo.Configurable. Booleans read as 0 or 1.
func (c *Config) GetParams() map[string]float64 {
	params := make(map[string]float64)
	for name, p := range c.floatParams() {
		params[name] = *p
	}
	for name, p := range c.boolParams() {
		params[name] = 0
		if *p {
			params[name] = 1
		}
	}
	params["floaters.count"] = float64(c.Floaters.Count)
	params["sim.record_every"] = float64(c.Sim.RecordEvery)
	return params
}

// SetParam implements dynamo.Configurable. Booleans are set by any non-zero
// value; integer fields are rounded.
func (c *Config) SetParam(name string, value float64) error {
	if p, ok := c.floatParams()[name]; ok {
		*p = value
		return nil
	}
	if p, ok := c.boolParams()[name]; ok {
		*p = value != 0
		return nil
	}
	switch name {
	case "floaters.count":
		c.Floaters.Count = int(math.Round(value))
	case "sim.record_every":
		c.Sim.RecordEvery = int(math.Round(value))
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

// ParamNames returns every settable parameter name, sorted.
func (c *Config) ParamNames() []string {
	params := c.GetParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
