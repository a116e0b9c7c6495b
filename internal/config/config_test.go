package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/buoysim/internal/dynamo"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Floaters.Count != 8 {
		t.Errorf("expected 8 floaters, got %d", cfg.Floaters.Count)
	}
	if cfg.Floaters.MassFull <= cfg.Floaters.MassEmpty {
		t.Error("mass_full should exceed mass_empty")
	}
	if cfg.Sim.Dt <= 0 {
		t.Error("dt should be positive")
	}
}

func TestDefaultMassFullCarriesWater(t *testing.T) {
	cfg := Default()
	water := cfg.Fluid.Density * cfg.Floaters.Volume
	if math.Abs(cfg.Floaters.MassFull-cfg.Floaters.MassEmpty-water) > 1e-9 {
		t.Errorf("mass_full - mass_empty = %v, want internal water mass %v",
			cfg.Floaters.MassFull-cfg.Floaters.MassEmpty, water)
	}
}

func TestValidateReportsField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"mass order", func(c *Config) { c.Floaters.MassFull = c.Floaters.MassEmpty }, "floaters.mass_full"},
		{"zero floaters", func(c *Config) { c.Floaters.Count = 0 }, "floaters.count"},
		{"negative volume", func(c *Config) { c.Floaters.Volume = -1 }, "floaters.volume"},
		{"nan density", func(c *Config) { c.Fluid.Density = math.NaN() }, "fluid.density"},
		{"starved min pressure", func(c *Config) { c.Pneumatics.MinPressure = 150000 }, "pneumatics.min_pressure"},
		{"efficiency above one", func(c *Config) { c.Pneumatics.Efficiency = 1.2 }, "pneumatics.efficiency"},
		{"gamma", func(c *Config) { c.Pneumatics.Gamma = 1 }, "pneumatics.gamma"},
		{"h1 reduction", func(c *Config) { c.Hypotheses.H1.DensityReduction = 1 }, "hypotheses.h1.density_reduction"},
		{"h3 coast", func(c *Config) {
			c.Hypotheses.H3.Enabled = true
			c.Hypotheses.H3.CoastDuration = 0
		}, "hypotheses.h3.coast_duration"},
		{"generator band", func(c *Config) { c.Generator.MaxOmega = c.Generator.SoftStartOmega }, "generator.max_omega"},
		{"control mode", func(c *Config) { c.Control.Mode = "bangbang" }, "control.mode"},
		{"dt", func(c *Config) { c.Sim.Dt = 0 }, "sim.dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			var ce *dynamo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestH3DurationsIgnoredWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Hypotheses.H3.Enabled = false
	cfg.Hypotheses.H3.CoastDuration = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled H3 should not be validated: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("floaters:\n  count: 12\nhypotheses:\n  h1:\n    enabled: true\n    density_reduction: 0.1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Floaters.Count != 12 {
		t.Errorf("expected 12 floaters, got %d", cfg.Floaters.Count)
	}
	if !cfg.Hypotheses.H1.Enabled || cfg.Hypotheses.H1.DensityReduction != 0.1 {
		t.Errorf("h1 not loaded: %+v", cfg.Hypotheses.H1)
	}
	if cfg.Floaters.Volume != Default().Floaters.Volume {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg, _ := GetPreset("all_hypotheses")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestGetPreset(t *testing.T) {
	cfg, ok := GetPreset("scenario_b")
	if !ok {
		t.Fatal("expected preset")
	}
	if !cfg.Hypotheses.H1.Enabled || cfg.Hypotheses.H1.DensityReduction != 0.10 {
		t.Errorf("scenario_b should enable H1 at 0.10, got %+v", cfg.Hypotheses.H1)
	}
	if cfg.Floaters.Count != 8 || cfg.Tank.Height != 10 {
		t.Errorf("scenario_b should build on scenario_a, got %d floaters, %v m", cfg.Floaters.Count, cfg.Tank.Height)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected false for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg, _ := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestSetParam(t *testing.T) {
	cfg := Default()

	if err := cfg.SetParam("generator.target_power", 750); err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.TargetPower != 750 {
		t.Errorf("target power = %v, want 750", cfg.Generator.TargetPower)
	}
	if err := cfg.SetParam("h3.enabled", 1); err != nil {
		t.Fatal(err)
	}
	if !cfg.Hypotheses.H3.Enabled {
		t.Error("h3.enabled should be set")
	}
	if err := cfg.SetParam("floaters.count", 11.6); err != nil {
		t.Fatal(err)
	}
	if cfg.Floaters.Count != 12 {
		t.Errorf("count = %d, want 12", cfg.Floaters.Count)
	}

	err := cfg.SetParam("warp.factor", 9)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestGetParamsMatchesSetParam(t *testing.T) {
	cfg := Default()
	for _, name := range cfg.ParamNames() {
		clone := cfg
		if err := clone.SetParam(name, cfg.GetParams()[name]); err != nil {
			t.Errorf("SetParam(%s): %v", name, err)
		}
		if clone != cfg {
			t.Errorf("SetParam(%s) with its own value changed the config", name)
		}
	}
}

func TestSameStructure(t *testing.T) {
	a := Default()
	b := a
	b.Hypotheses.H1.Enabled = true
	b.Generator.TargetPower = 900
	if !a.SameStructure(b) {
		t.Error("hypothesis and generator changes should not be structural")
	}
	b.Floaters.Count = 10
	if a.SameStructure(b) {
		t.Error("floater count change should be structural")
	}
}

func TestInjectionPressure(t *testing.T) {
	cfg := Default()
	want := 101325.0 + 1000*9.81*10
	if math.Abs(cfg.InjectionPressure()-want) > 1e-6 {
		t.Errorf("InjectionPressure() = %v, want %v", cfg.InjectionPressure(), want)
	}
}
