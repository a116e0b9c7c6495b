package config

import "sort"

// Presets maps a preset name to a modifier applied on top of Default().
var Presets = map[string]func(*Config){
	"baseline":    func(c *Config) {},
	"scenario_a":  scenarioA,
	"scenario_b":  scenarioB,
	"nanobubbles": nanobubbles,
	"thermal":     thermal,
	"pulse_coast": pulseCoast,
	"all_hypotheses": func(c *Config) {
		nanobubbles(c)
		thermal(c)
		pulseCoast(c)
	},
	"tall_tank": func(c *Config) {
		c.Floaters.Count = 20
		c.Tank.Height = 25
		c.Pneumatics.MinPressure = 400000
		c.Pneumatics.MaxPressure = 800000
		c.Pneumatics.InitialPressure = 800000
		c.Pneumatics.CompressorPower = 12000
		c.Generator.TargetPower = 1500
		c.Floaters.MassFull = c.Floaters.MassEmpty + 1000*c.Floaters.Volume
	},
}

// scenarioA is the unassisted reference: 8 floaters of 0.04 m3, 10 m tank,
// 60 s at dt=0.1 with every hypothesis off.
func scenarioA(c *Config) {
	c.Floaters.Count = 8
	c.Floaters.Volume = 0.04
	c.Floaters.MassFull = c.Floaters.MassEmpty + c.Fluid.Density*c.Floaters.Volume
	c.Tank.Height = 10
	c.Hypotheses = HypothesesConfig{}
	c.Hypotheses.H1.DensityReductionFactor = 1
	c.Sim.Dt = 0.1
	c.Sim.Duration = 60
}

func scenarioB(c *Config) {
	scenarioA(c)
	c.Hypotheses.H1.Enabled = true
	c.Hypotheses.H1.DensityReduction = 0.10
}

func nanobubbles(c *Config) {
	c.Hypotheses.H1.Enabled = true
	c.Hypotheses.H1.DensityReduction = 0.05
	c.Hypotheses.H1.DragReduction = 0.12
}

func thermal(c *Config) {
	c.Hypotheses.H2.Enabled = true
	c.Hypotheses.H2.ThermalBoost = 0.06
}

func pulseCoast(c *Config) {
	c.Hypotheses.H3.Enabled = true
	c.Hypotheses.H3.CoastDuration = 2.0
	c.Hypotheses.H3.PulseDuration = 1.0
	c.Sim.Dt = 0.02
}

// GetPreset returns the named preset applied to the defaults.
func GetPreset(name string) (Config, bool) {
	apply, ok := Presets[name]
	if !ok {
		return Config{}, false
	}
	cfg := Default()
	apply(&cfg)
	return cfg, true
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
