// Package config provides configuration loading, validation and presets for
// the buoyancy engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every engine parameter. It is a plain value: copying it yields
// an independent configuration.
type Config struct {
	Floaters   FloaterConfig    `yaml:"floaters"`
	Tank       TankConfig       `yaml:"tank"`
	Fluid      FluidConfig      `yaml:"fluid"`
	Pneumatics PneumaticsConfig `yaml:"pneumatics"`
	Drivetrain DrivetrainConfig `yaml:"drivetrain"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Hypotheses HypothesesConfig `yaml:"hypotheses"`
	Control    ControlConfig    `yaml:"control"`
	Sim        SimConfig        `yaml:"sim"`
}

// FloaterConfig holds floater geometry and fill dynamics.
type FloaterConfig struct {
	Count     int     `yaml:"count"`
	Volume    float64 `yaml:"volume"`
	MassEmpty float64 `yaml:"mass_empty"` // shell, air-filled
	MassFull  float64 `yaml:"mass_full"`  // shell plus internal water
	FillRate  float64 `yaml:"fill_rate"`  // air fraction per second
	VentRate  float64 `yaml:"vent_rate"`
}

// TankConfig holds the loop geometry.
type TankConfig struct {
	Height         float64 `yaml:"height"`
	TransitionArc  float64 `yaml:"transition_arc"`
	ApexSubmersion float64 `yaml:"apex_submersion"`
	InjectionZone  float64 `yaml:"injection_zone"`
}

// FluidConfig holds ambient fluid properties.
type FluidConfig struct {
	Density             float64 `yaml:"density"`
	Gravity             float64 `yaml:"gravity"`
	DragCoefficient     float64 `yaml:"drag_coefficient"`
	CrossSectionArea    float64 `yaml:"cross_section_area"`
	Temperature         float64 `yaml:"temperature"` // Celsius
	AtmosphericPressure float64 `yaml:"atmospheric_pressure"`
}

// PneumaticsConfig holds compressor and air tank settings. Pressures are absolute.
type PneumaticsConfig struct {
	TankVolume      float64 `yaml:"tank_volume"`
	CompressorPower float64 `yaml:"compressor_power"`
	InitialPressure float64 `yaml:"initial_pressure"`
	MinPressure     float64 `yaml:"min_pressure"`
	MaxPressure     float64 `yaml:"max_pressure"`
	Efficiency      float64 `yaml:"efficiency"`
	Gamma           float64 `yaml:"gamma"`
}

// DrivetrainConfig holds sprocket, clutch and flywheel constants.
type DrivetrainConfig struct {
	SprocketRadius   float64 `yaml:"sprocket_radius"`
	FlywheelInertia  float64 `yaml:"flywheel_inertia"`
	FlywheelFriction float64 `yaml:"flywheel_friction"`
	OneWayClutch     bool    `yaml:"one_way_clutch"`
}

// GeneratorConfig holds the load curve parameters.
type GeneratorConfig struct {
	TargetPower    float64 `yaml:"target_power"`
	SoftStartOmega float64 `yaml:"soft_start_omega"`
	MaxOmega       float64 `yaml:"max_omega"`
	OverspeedGain  float64 `yaml:"overspeed_gain"`
	MaxTorque      float64 `yaml:"max_torque"`
}

// HypothesesConfig groups the three optional physical-effect hypotheses.
type HypothesesConfig struct {
	H1 H1Config `yaml:"h1"`
	H2 H2Config `yaml:"h2"`
	H3 H3Config `yaml:"h3"`
}

// H1Config: nanobubble density and drag reduction on the descending run.
type H1Config struct {
	Enabled                bool    `yaml:"enabled"`
	DensityReduction       float64 `yaml:"density_reduction"`
	DensityReductionFactor float64 `yaml:"density_reduction_factor"`
	DragReduction          float64 `yaml:"drag_reduction"`
}

// H2Config: isothermal injection and thermal buoyancy boost.
type H2Config struct {
	Enabled      bool    `yaml:"enabled"`
	ThermalBoost float64 `yaml:"thermal_boost"`
}

// H3Config: pulse-and-coast clutch scheduling.
type H3Config struct {
	Enabled       bool    `yaml:"enabled"`
	CoastDuration float64 `yaml:"coast_duration"`
	PulseDuration float64 `yaml:"pulse_duration"`
}

// ControlConfig selects the external controller used when H3 is off.
type ControlConfig struct {
	Mode        string  `yaml:"mode"`
	TargetOmega float64 `yaml:"target_omega"`
	Kp          float64 `yaml:"kp"`
	Ki          float64 `yaml:"ki"`
	Kd          float64 `yaml:"kd"`
}

// SimConfig holds run-level settings used by hosts and the ledger check.
type SimConfig struct {
	Dt                    float64 `yaml:"dt"`
	Duration              float64 `yaml:"duration"`
	RecordEvery           int     `yaml:"record_every"`
	ConservationTolerance float64 `yaml:"conservation_tolerance"`
}

// Default returns the embedded baseline configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads a YAML file and overlays it on the embedded defaults. Only the
// fields present in the file are overwritten. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// LoopLength is the full chain loop: up one run and down the other.
func (c Config) LoopLength() float64 {
	return 2 * c.Tank.Height
}

// InjectionPressure is the absolute pressure at the bottom threshold.
func (c Config) InjectionPressure() float64 {
	return c.Fluid.AtmosphericPressure + c.Fluid.Density*c.Fluid.Gravity*c.Tank.Height
}

// SameStructure reports whether two configurations build the same floater
// roster and loop, so one can be hot-swapped for the other without a reset.
func (c Config) SameStructure(o Config) bool {
	return c.Floaters.Count == o.Floaters.Count &&
		c.Floaters.Volume == o.Floaters.Volume &&
		c.Floaters.MassEmpty == o.Floaters.MassEmpty &&
		c.Floaters.MassFull == o.Floaters.MassFull &&
		c.Tank == o.Tank &&
		c.Drivetrain.SprocketRadius == o.Drivetrain.SprocketRadius &&
		c.Drivetrain.FlywheelInertia == o.Drivetrain.FlywheelInertia &&
		c.Pneumatics.TankVolume == o.Pneumatics.TankVolume
}
