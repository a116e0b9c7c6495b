package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/buoysim/internal/dynamo"
)

func TestLedgerAccumulates(t *testing.T) {
	l := NewLedger(1e-9)
	l.Reset(10)

	// 30 J of buoyancy work, 5 J to drag, 15 J to the generator, 10 J to KE
	l.Record(Flows{Buoyant: 40, Gravity: -10, Drag: 5, Compressor: 100, Generator: 15}, 20, 0.1)

	got := l.Totals()
	if got.NetEnergyJ != -85 {
		t.Errorf("net energy: got %v, want -85", got.NetEnergyJ)
	}
	if math.Abs(got.ResidualJ) > 1e-12 {
		t.Errorf("residual: got %v, want 0", got.ResidualJ)
	}
	if err := l.Check(); err != nil {
		t.Errorf("balanced ledger failed check: %v", err)
	}
	if got.Timestamp != 0.1 || got.KineticEnergyJ != 20 {
		t.Errorf("timestamp %v ke %v", got.Timestamp, got.KineticEnergyJ)
	}
}

func TestLedgerDetectsImbalance(t *testing.T) {
	l := NewLedger(1e-6)
	l.Reset(0)
	l.Record(Flows{Buoyant: 100}, 50, 0.1)

	if math.Abs(l.Totals().ResidualJ-50) > 1e-12 {
		t.Errorf("residual: got %v, want 50", l.Totals().ResidualJ)
	}
	err := l.Check()
	if !errors.Is(err, dynamo.ErrPhysicsInvariant) {
		t.Errorf("expected ErrPhysicsInvariant, got %v", err)
	}
}

func TestLedgerIdentityTerms(t *testing.T) {
	tests := []struct {
		name string
		f    Flows
		ke   float64
		want float64
	}{
		{"compressor outside the balance", Flows{Compressor: 9810}, 0, 0},
		{"clutch loss closes the balance", Flows{Buoyant: 50, Clutch: 20}, 30, 0},
		{"friction closes the balance", Flows{Buoyant: 50, Friction: 5, Generator: 15}, 30, 0},
		{"missing loss shows as residual", Flows{Buoyant: 50}, 30, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(1e-9)
			l.Reset(0)
			l.Record(tt.f, tt.ke, 0.1)
			if got := l.Totals().ResidualJ; math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("residual: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger(1e-6)
	l.Reset(0)
	l.Record(Flows{Buoyant: 10, Drag: 10}, 0, 1)
	l.Reset(5)
	if got := l.Totals(); got.BuoyantWorkJ != 0 || got.DragLossJ != 0 || got.KineticEnergyJ != 5 {
		t.Errorf("after reset: %+v", got)
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		name   string
		totals dynamo.LedgerTotals
		want   bool
	}{
		{"losses within input", dynamo.LedgerTotals{BuoyantWorkJ: 100, GravityWorkJ: -40, DragLossJ: 30, GeneratorEnergyJ: 20}, true},
		{"compressor covers output", dynamo.LedgerTotals{CompressorEnergyJ: 100, GeneratorEnergyJ: 50}, true},
		{"free energy", dynamo.LedgerTotals{BuoyantWorkJ: 10, GeneratorEnergyJ: 50}, false},
	}
	for _, tt := range tests {
		if got := Balanced(tt.totals, 1e-9); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSnapshotMetrics(t *testing.T) {
	snaps := []*dynamo.Snapshot{
		{ChainSpeed: 0, NetPower: -100, GeneratorPower: 0, ClutchEngaged: false, GeneratorTorque: 0},
		{ChainSpeed: 1, NetPower: -50, GeneratorPower: 20, ClutchEngaged: true, GeneratorTorque: 10},
		{ChainSpeed: 2, NetPower: 30, GeneratorPower: 40, ClutchEngaged: true, GeneratorTorque: 20},
		{ChainSpeed: 2, NetPower: 0, GeneratorPower: 40, ClutchEngaged: true, GeneratorTorque: 30, Ledger: dynamo.LedgerTotals{NetEnergyJ: -12}},
	}

	tests := []struct {
		metric dynamo.Metric
		want   float64
	}{
		{NewMeanNetPower(), -30},
		{NewMeanGeneratorPower(), 25},
		{NewStallFraction(StallThreshold), 0.25},
		{NewClutchDuty(), 0.75},
		{NewControlEffort(), 15},
		{NewNetEnergy(), -12},
	}
	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			for _, s := range snaps {
				tt.metric.Observe(s)
			}
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			tt.metric.Reset()
			if got := tt.metric.Value(); got != 0 {
				t.Errorf("after reset: got %v", got)
			}
		})
	}
}

func TestConservationDrift(t *testing.T) {
	m := NewConservationDrift()
	m.Observe(&dynamo.Snapshot{Ledger: dynamo.LedgerTotals{BuoyantWorkJ: 1000, ResidualJ: 0.001}})
	m.Observe(&dynamo.Snapshot{Ledger: dynamo.LedgerTotals{BuoyantWorkJ: 2000, ResidualJ: 0.001}})
	if got := m.Value(); math.Abs(got-1e-6) > 1e-15 {
		t.Errorf("got %v, want 1e-6", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("New(%q) built %q", name, m.Name())
		}
	}
	if _, err := New("nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
