package dynamo

import (
	"fmt"
	"log/slog"
	"math"
)

// FloaterState is the pneumatic state of a floater. Transitions are strictly
// cyclic: Empty -> Filling -> Filled -> Venting -> Empty.
type FloaterState int

const (
	Empty FloaterState = iota
	Filling
	Filled
	Venting
)

func (s FloaterState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Filling:
		return "filling"
	case Filled:
		return "filled"
	case Venting:
		return "venting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Next returns the only state reachable from s.
func (s FloaterState) Next() FloaterState {
	return (s + 1) % 4
}

// MarshalText lets yaml and csv encoders write the state name.
func (s FloaterState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Side is the run of the chain loop a floater is on.
type Side int

const (
	Ascending Side = iota
	Descending
)

func (s Side) String() string {
	if s == Descending {
		return "descending"
	}
	return "ascending"
}

// Direction is +1 on the ascending run and -1 on the descending run: the
// vertical component of motion along the loop.
func (s Side) Direction() float64 {
	if s == Descending {
		return -1
	}
	return 1
}

// PulsePhase is the H3 pulse-and-coast phase.
type PulsePhase int

const (
	PhaseNone PulsePhase = iota
	Coasting
	Pulsing
)

func (p PulsePhase) String() string {
	switch p {
	case Coasting:
		return "coasting"
	case Pulsing:
		return "pulsing"
	default:
		return "none"
	}
}

// Forces acting on one floater. Buoyant points up, Weight points down, Drag is
// signed along the loop direction and always opposes the chain velocity.
type Forces struct {
	Buoyant float64
	Weight  float64
	Drag    float64
}

// Along projects the forces onto the loop direction for a floater on side.
// Ascending: B - W + D. Descending: W - B + D.
func (f Forces) Along(side Side) float64 {
	return side.Direction()*(f.Buoyant-f.Weight) + f.Drag
}

// IsValid reports whether all components are finite.
func (f Forces) IsValid() bool {
	return finite(f.Buoyant) && finite(f.Weight) && finite(f.Drag)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SkipCounts records non-fatal operations that were refused.
type SkipCounts struct {
	NotEmpty     int `json:"not_empty"`
	TankStarved  int `json:"tank_starved"`
	ZoneOccupied int `json:"zone_occupied"`
	NotFilled    int `json:"not_filled"`
	ClutchSlip   int `json:"clutch_slip"`
}

// Total returns the sum of all skip counters.
func (s SkipCounts) Total() int {
	return s.NotEmpty + s.TankStarved + s.ZoneOccupied + s.NotFilled + s.ClutchSlip
}

// LedgerTotals are the cumulative energy flows since the last reset, in joules.
type LedgerTotals struct {
	BuoyantWorkJ      float64 `json:"buoyant_work_j"`
	GravityWorkJ      float64 `json:"gravity_work_j"`
	DragLossJ         float64 `json:"drag_loss_j"`
	CompressorEnergyJ float64 `json:"compressor_energy_j"`
	GeneratorEnergyJ  float64 `json:"generator_energy_j"`
	ClutchLossJ       float64 `json:"clutch_loss_j"`
	FrictionLossJ     float64 `json:"friction_loss_j"`
	NetEnergyJ        float64 `json:"net_energy_j"`
	KineticEnergyJ    float64 `json:"kinetic_energy_j"`
	ResidualJ         float64 `json:"residual_j"`
	Timestamp         float64 `json:"timestamp"`
}

// LogValue implements slog.LogValuer for structured logging.
func (l LedgerTotals) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("buoyant_j", l.BuoyantWorkJ),
		slog.Float64("gravity_j", l.GravityWorkJ),
		slog.Float64("drag_j", l.DragLossJ),
		slog.Float64("compressor_j", l.CompressorEnergyJ),
		slog.Float64("generator_j", l.GeneratorEnergyJ),
		slog.Float64("net_j", l.NetEnergyJ),
		slog.Float64("residual_j", l.ResidualJ),
	)
}

// FloaterSnapshot is the per-floater part of a Snapshot.
type FloaterSnapshot struct {
	ID           int
	Position     float64
	Height       float64
	Side         Side
	Velocity     float64
	State        FloaterState
	FillProgress float64
	Mass         float64
	Forces       Forces
}

// Snapshot is the immutable engine output for one tick.
type Snapshot struct {
	Tick     int64
	Time     float64
	Floaters []FloaterSnapshot

	ChainSpeed      float64 // m/s along the loop
	ChainOmega      float64 // rad/s at the sprocket
	ClutchEngaged   bool
	FlywheelOmega   float64
	PulsePhase      PulsePhase
	GeneratorTorque float64

	// Tick means: energy booked this tick divided by dt.
	GeneratorPower  float64
	CompressorPower float64
	NetPower        float64

	TankPressure float64
	Injections   int
	AirMassKg    float64

	Ledger LedgerTotals
	Skips  SkipCounts
}

// LogValue implements slog.LogValuer for structured logging.
func (s *Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", s.Tick),
		slog.Float64("t", s.Time),
		slog.Float64("chain_speed", s.ChainSpeed),
		slog.Bool("clutch", s.ClutchEngaged),
		slog.Float64("net_power", s.NetPower),
		slog.Float64("tank_pa", s.TankPressure),
		slog.Int("skips", s.Skips.Total()),
	)
}

// Observation is what a Controller sees before each tick.
type Observation struct {
	ChainOmega    float64
	FlywheelOmega float64
	Engaged       bool
	LoadTorque    float64 // generator load curve evaluated at ChainOmega
	TankPressure  float64
}

// Command is a controller decision for one tick.
type Command struct {
	Engage          bool
	GeneratorTorque float64
}

// Controller commands the clutch and generator from outside the engine.
type Controller interface {
	Compute(obs Observation, t float64) Command
}

// Metric accumulates a scalar over emitted snapshots.
type Metric interface {
	Name() string
	Observe(s *Snapshot)
	Value() float64
	Reset()
}

// Observer is notified with every emitted snapshot.
type Observer interface {
	OnStep(s *Snapshot)
}

// Configurable exposes dotted numeric parameters for sweeps and scripted runs.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
