package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestFloaterStateCycle(t *testing.T) {
	s := Empty
	want := []FloaterState{Filling, Filled, Venting, Empty}
	for i, w := range want {
		s = s.Next()
		if s != w {
			t.Fatalf("step %d: got %v, want %v", i, s, w)
		}
	}
}

func TestForcesAlong(t *testing.T) {
	f := Forces{Buoyant: 400, Weight: 100, Drag: -20}

	if got := f.Along(Ascending); got != 280 {
		t.Errorf("ascending = %v, want 280", got)
	}
	if got := f.Along(Descending); got != -320 {
		t.Errorf("descending = %v, want -320", got)
	}
}

func TestForcesIsValid(t *testing.T) {
	tests := []struct {
		name  string
		f     Forces
		valid bool
	}{
		{"normal", Forces{1, 2, 3}, true},
		{"zero", Forces{}, true},
		{"nan buoyant", Forces{Buoyant: math.NaN()}, false},
		{"inf drag", Forces{Drag: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "floaters.mass_full", Constraint: "> mass_empty", Value: 5.0}
	want := "config floaters.mass_full: must be > mass_empty, got 5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should unwrap to ErrInvalidConfig")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Detail: "nan force", Wrapped: ErrPhysicsInvariant}
	want := "step 150 (t=1.5000): nan force: dynamo: physics invariant violated"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrPhysicsInvariant) {
		t.Error("SimulationError should unwrap to its cause")
	}
}

func TestSkipCountsTotal(t *testing.T) {
	s := SkipCounts{NotEmpty: 1, TankStarved: 2, ZoneOccupied: 3, NotFilled: 4, ClutchSlip: 5}
	if s.Total() != 15 {
		t.Errorf("Total() = %d, want 15", s.Total())
	}
}
