// Package automation runs scripted scenarios and parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/sim"
)

// Scenario is a preset run with parameter changes at fixed times.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Preset      string             `yaml:"preset"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	RecordEvery int                `yaml:"record_every"`
	Params      map[string]float64 `yaml:"params"`
	Events      []Event            `yaml:"events"`
}

// Event sets parameters once the simulation clock reaches At seconds.
type Event struct {
	At  float64            `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Preset == "" {
		s.Preset = "baseline"
	}
	return &s, nil
}

// Config resolves the starting configuration: preset, then the sim
// overrides, then Params.
func (s *Scenario) Config() (config.Config, error) {
	cfg, ok := config.GetPreset(s.Preset)
	if !ok {
		return cfg, fmt.Errorf("scenario %s: unknown preset %q", s.Name, s.Preset)
	}
	if s.Dt > 0 {
		cfg.Sim.Dt = s.Dt
	}
	if s.Duration > 0 {
		cfg.Sim.Duration = s.Duration
	}
	if s.RecordEvery > 0 {
		cfg.Sim.RecordEvery = s.RecordEvery
	}
	for _, name := range slices.Sorted(maps.Keys(s.Params)) {
		if err := cfg.SetParam(name, s.Params[name]); err != nil {
			return cfg, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	return cfg, cfg.Validate()
}

// schedule maps a tick to the parameters staged before it. Events landing on
// the same tick are merged in file order.
func (s *Scenario) schedule(dt float64) (map[int]map[string]float64, error) {
	out := make(map[int]map[string]float64)
	for i, ev := range s.Events {
		if ev.At < 0 || math.IsNaN(ev.At) {
			return nil, fmt.Errorf("event %d: invalid time %v", i, ev.At)
		}
		tick := int(math.Round(ev.At / dt))
		if out[tick] == nil {
			out[tick] = make(map[string]float64)
		}
		for name, v := range ev.Set {
			if strings.HasPrefix(name, "sim.") {
				return nil, fmt.Errorf("event %d: %s cannot change during a run", i, name)
			}
			out[tick][name] = v
		}
	}
	return out, nil
}

// RunScenario runs s to completion. Each event is staged through
// Engine.Configure ahead of its tick, so it takes effect at that tick; a
// structural change restarts the run from the baseline.
func RunScenario(ctx context.Context, s *Scenario, opts ...sim.Option) (*experiment.Result, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	events, err := s.schedule(cfg.Sim.Dt)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	exp, err := experiment.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	eng := exp.Engine()
	return exp.RunWithHook(ctx, func(tick int) error {
		set, ok := events[tick]
		if !ok {
			return nil
		}
		next := eng.Config()
		for _, name := range slices.Sorted(maps.Keys(set)) {
			if err := next.SetParam(name, set[name]); err != nil {
				return err
			}
		}
		if !next.SameStructure(eng.Config()) {
			slog.Warn("scenario event restarts the run", "scenario", s.Name, "tick", tick)
		}
		slog.Info("scenario event", "scenario", s.Name, "tick", tick, "params", len(set))
		return eng.Configure(next)
	})
}
