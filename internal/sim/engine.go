package sim

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/physics"
)

// Engine owns every floater and subsystem and advances them one fixed tick at
// a time. One goroutine calls Step, Reset and SetController; any goroutine
// may call Snapshot and Configure.
type Engine struct {
	mu      sync.Mutex
	pending *config.Config

	cfg          config.Config
	loop         physics.Loop
	fluid        physics.Fluid
	hyp          physics.Hypotheses
	generator    physics.Generator
	floaters     []physics.Floater
	pneumatics   *physics.Pneumatics
	drivetrain   *physics.Drivetrain
	pulse        *physics.PulseScheduler
	ledger       *metrics.Ledger
	chainInertia float64

	controller       dynamo.Controller
	customController bool

	tick   int64
	time   float64
	skips  dynamo.SkipCounts
	halted error

	forces []dynamo.Forces

	snap      atomic.Pointer[dynamo.Snapshot]
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *slog.Logger
}

// massSlack absorbs rounding in the fill interpolation.
const massSlack = 1e-9

type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithController replaces the controller built from the control section.
func WithController(c dynamo.Controller) Option {
	return func(e *Engine) {
		e.controller = c
		e.customController = c != nil
	}
}

// New validates cfg and returns an engine at the baseline state.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.customController {
		ctrl, err := control.FromConfig(cfg.Control)
		if err != nil {
			return nil, err
		}
		e.controller = ctrl
	}
	e.build()
	e.reset()
	return e, nil
}

func (e *Engine) AddMetric(m dynamo.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// Config returns the configuration currently in effect.
func (e *Engine) Config() config.Config { return e.cfg }

// SetController installs c from the next tick on. A nil c restores the
// controller named by the configuration.
func (e *Engine) SetController(c dynamo.Controller) {
	if c == nil {
		e.customController = false
		e.controller, _ = control.FromConfig(e.cfg.Control)
		return
	}
	e.controller = c
	e.customController = true
}

// Snapshot returns the last emitted snapshot without advancing.
func (e *Engine) Snapshot() *dynamo.Snapshot {
	return e.snap.Load()
}

// Halted returns the error that stopped the engine, or nil.
func (e *Engine) Halted() error { return e.halted }

// Configure validates cfg and stages it for the start of the next Step. A
// rejected configuration leaves the engine untouched.
func (e *Engine) Configure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.pending = &cfg
	e.mu.Unlock()
	return nil
}

// Reset applies any staged configuration and returns every entity to the
// deterministic baseline. It also clears a halt.
func (e *Engine) Reset() {
	if cfg, ok := e.takePending(); ok {
		e.cfg = cfg
		if !e.customController {
			e.controller, _ = control.FromConfig(cfg.Control)
		}
	}
	e.build()
	e.reset()
}

func (e *Engine) takePending() (config.Config, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return config.Config{}, false
	}
	cfg := *e.pending
	e.pending = nil
	return cfg, true
}

// build derives the immutable collaborators from e.cfg.
func (e *Engine) build() {
	e.hyp = physics.NewHypotheses(e.cfg.Hypotheses)
	e.loop = physics.NewLoop(e.cfg.Tank)
	e.fluid = physics.NewFluid(e.cfg.Fluid, e.hyp)
	e.generator = physics.NewGenerator(e.cfg.Generator)
	e.ledger = metrics.NewLedger(e.cfg.Sim.ConservationTolerance)
}

// reset lays the floaters out evenly and restores the baseline: air-filled on
// the ascending run, water-filled on the descending run.
func (e *Engine) reset() {
	n := e.cfg.Floaters.Count
	spacing := e.loop.Length() / float64(n)
	e.floaters = make([]physics.Floater, n)
	for i := range e.floaters {
		f := &e.floaters[i]
		f.ID = i
		f.Volume = e.cfg.Floaters.Volume
		f.MassEmpty = e.cfg.Floaters.MassEmpty
		f.MassFull = e.cfg.Floaters.MassFull
		f.Position = float64(i) * spacing
		if e.loop.Side(f.Position) == dynamo.Ascending {
			f.State = dynamo.Filled
			f.FillProgress = 1
		} else {
			f.State = dynamo.Empty
		}
	}
	e.forces = make([]dynamo.Forces, n)

	e.pneumatics = physics.NewPneumatics(e.cfg.Pneumatics, e.cfg.Fluid.AtmosphericPressure, e.hyp.H2.Enabled)
	e.drivetrain = physics.NewDrivetrain(e.cfg.Drivetrain)
	e.pulse = physics.NewPulseScheduler(e.hyp.H3)
	e.chainInertia = physics.ChainInertia(e.floaters, e.drivetrain.Radius)
	e.ledger.Reset(e.drivetrain.KineticEnergy(e.chainInertia))

	if r, ok := e.controller.(interface{ Reset() }); ok {
		r.Reset()
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	e.tick = 0
	e.time = 0
	e.skips = dynamo.SkipCounts{}
	e.halted = nil

	for i := range e.floaters {
		e.forces[i] = e.floaters[i].ComputeForces(e.fluid, e.loop)
	}
	e.publish(tickPower{phase: e.phase()})
}

// retune hot-swaps a configuration that keeps the floater roster and loop.
func (e *Engine) retune(cfg config.Config) {
	wasPulsing := e.hyp.H3.Enabled
	controlChanged := cfg.Control != e.cfg.Control
	e.cfg = cfg

	e.hyp = physics.NewHypotheses(cfg.Hypotheses)
	e.fluid = physics.NewFluid(cfg.Fluid, e.hyp)
	e.generator = physics.NewGenerator(cfg.Generator)
	e.pneumatics.Retune(cfg.Pneumatics, cfg.Fluid.AtmosphericPressure, e.hyp.H2.Enabled)
	e.drivetrain.Retune(cfg.Drivetrain)
	e.pulse.Retune(e.hyp.H3)
	if e.hyp.H3.Enabled && !wasPulsing {
		e.pulse.Reset()
	}
	e.ledger.SetTolerance(cfg.Sim.ConservationTolerance)
	if controlChanged && !e.customController {
		e.controller, _ = control.FromConfig(cfg.Control)
	}
}

func (e *Engine) applyPending() {
	cfg, ok := e.takePending()
	if !ok {
		return
	}
	if !cfg.SameStructure(e.cfg) {
		e.logger.Info("configuration applied", "reset", true, "tick", e.tick)
		e.cfg = cfg
		if !e.customController {
			e.controller, _ = control.FromConfig(cfg.Control)
		}
		e.build()
		e.reset()
		return
	}
	e.logger.Info("configuration applied", "reset", false, "tick", e.tick)
	e.retune(cfg)
}

type tickPower struct {
	generator  float64
	compressor float64
	torque     float64
	phase      dynamo.PulsePhase
}

// Step advances the simulation by dt seconds and returns the new snapshot.
// After a physics invariant violation the engine halts: the returned error
// wraps dynamo.ErrPhysicsInvariant, the last good snapshot stays readable
// and every later Step fails with dynamo.ErrHalted until Reset.
func (e *Engine) Step(dt float64) (*dynamo.Snapshot, error) {
	if e.halted != nil {
		return e.Snapshot(), fmt.Errorf("%w: %v", dynamo.ErrHalted, e.halted)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidStep, dt)
	}

	e.applyPending()

	// forces at the current chain speed
	v := e.drivetrain.ChainSpeed()
	var net float64
	for i := range e.floaters {
		f := &e.floaters[i]
		f.Velocity = v
		e.forces[i] = f.ComputeForces(e.fluid, e.loop)
		if !e.forces[i].IsValid() {
			return e.halt(fmt.Sprintf("non-finite force on floater %d", f.ID))
		}
		net += e.forces[i].Along(e.loop.Side(f.Position))
	}

	// clutch and generator command
	phase := e.phase()
	cmd := e.command(phase)
	var clutchLoss float64
	switch {
	case cmd.Engage && !e.drivetrain.Engaged:
		loss, ok := e.drivetrain.Engage(e.chainInertia)
		if !ok {
			e.skips.ClutchSlip++
			e.logger.Debug("operation skipped", "op", "engage", "reason", "chain slower than flywheel", "tick", e.tick)
		}
		clutchLoss = loss
	case !cmd.Engage && e.drivetrain.Engaged:
		e.drivetrain.Disengage()
	}
	torque := e.generator.ClampTorque(cmd.GeneratorTorque)

	res := e.drivetrain.Step(net, e.chainInertia, torque, dt)
	if !finite(e.drivetrain.ChainOmega) || !finite(e.drivetrain.FlywheelOmega) {
		return e.halt("non-finite shaft speed")
	}
	if e.hyp.H3.Enabled {
		e.pulse.Advance(dt)
	}

	// work over the step and floater motion
	ds := res.OmegaMid * e.drivetrain.Radius * dt
	flows := metrics.Flows{
		Generator: res.GeneratorEnergy,
		Clutch:    clutchLoss,
		Friction:  res.FrictionEnergy,
	}
	crossings := make([][]physics.Crossing, len(e.floaters))
	for i := range e.floaters {
		f := &e.floaters[i]
		fc := e.forces[i]
		dir := e.loop.Side(f.Position).Direction()
		flows.Buoyant += fc.Buoyant * dir * ds
		flows.Gravity -= fc.Weight * dir * ds
		flows.Drag -= fc.Drag * ds

		f.Position, crossings[i] = e.loop.Advance(f.Position, ds)
		f.Progress(dt, e.cfg.Floaters.FillRate, e.cfg.Floaters.VentRate)
	}

	// pneumatic events in floater order, each floater's crossings in the
	// order it reached them
	for i := range e.floaters {
		for _, c := range crossings[i] {
			switch c {
			case physics.CrossedTop:
				e.vent(i)
			case physics.CrossedBottom:
				flows.Compressor += e.inject(i)
			}
		}
	}
	e.pneumatics.Replenish(dt)

	for i := range e.floaters {
		f := &e.floaters[i]
		eps := massSlack * f.MassFull
		if m := f.Mass(); m < f.MassEmpty-eps || m > f.MassFull+eps || math.IsNaN(m) {
			return e.halt(fmt.Sprintf("floater %d mass %.6g outside [%g, %g]", f.ID, m, f.MassEmpty, f.MassFull))
		}
	}

	e.ledger.Record(flows, e.drivetrain.KineticEnergy(e.chainInertia), e.time+dt)
	if err := e.ledger.Check(); err != nil {
		return e.halt(err.Error())
	}
	e.time += dt
	e.tick++

	// mean powers over the tick, so power times dt sums to the ledger
	p := tickPower{
		generator:  res.GeneratorEnergy / dt,
		compressor: flows.Compressor / dt,
		torque:     res.GeneratorTorque,
		phase:      phase,
	}
	snap := e.publish(p)
	for _, m := range e.metrics {
		m.Observe(snap)
	}
	for _, o := range e.observers {
		o.OnStep(snap)
	}
	return snap, nil
}

// phase is the H3 phase in effect for the coming tick.
func (e *Engine) phase() dynamo.PulsePhase {
	if !e.hyp.H3.Enabled {
		return dynamo.PhaseNone
	}
	return e.pulse.Phase()
}

// command asks the H3 scheduler or the external controller for this tick's
// clutch state and generator torque.
func (e *Engine) command(phase dynamo.PulsePhase) dynamo.Command {
	load := e.generator.LoadTorque(e.drivetrain.ChainOmega)
	if phase != dynamo.PhaseNone {
		return dynamo.Command{
			Engage:          phase == dynamo.Pulsing,
			GeneratorTorque: load,
		}
	}
	obs := dynamo.Observation{
		ChainOmega:    e.drivetrain.ChainOmega,
		FlywheelOmega: e.drivetrain.FlywheelOmega,
		Engaged:       e.drivetrain.Engaged,
		LoadTorque:    load,
		TankPressure:  e.pneumatics.TankPressure,
	}
	return e.controller.Compute(obs, e.time)
}

func (e *Engine) vent(i int) {
	f := &e.floaters[i]
	f.CompleteFill()
	if reason := e.pneumatics.Vent(f); reason != physics.NotSkipped {
		e.skips.NotFilled++
		e.logger.Debug("operation skipped", "op", "vent", "floater", f.ID, "reason", reason.String(), "tick", e.tick)
	}
}

// inject requests air for floater i at the bottom threshold and returns the
// compressor energy spent.
func (e *Engine) inject(i int) float64 {
	f := &e.floaters[i]
	f.CompleteVent()

	for j := range e.floaters {
		o := &e.floaters[j]
		if j != i && o.State == dynamo.Filling && e.loop.InInjectionZone(o.Position) {
			e.skips.ZoneOccupied++
			e.logger.Debug("operation skipped", "op", "inject", "floater", f.ID, "reason", "injection zone occupied", "by", o.ID, "tick", e.tick)
			return 0
		}
	}

	energy, reason := e.pneumatics.Inject(f, e.fluid.PressureAt(e.loop.Height), e.fluid)
	switch reason {
	case physics.SkipNotEmpty:
		e.skips.NotEmpty++
	case physics.SkipTankStarved:
		e.skips.TankStarved++
	}
	if reason != physics.NotSkipped {
		e.logger.Debug("operation skipped", "op", "inject", "floater", f.ID, "reason", reason.String(),
			"tank_pa", e.pneumatics.TankPressure, "tick", e.tick)
	}
	return energy
}

func (e *Engine) halt(detail string) (*dynamo.Snapshot, error) {
	err := &dynamo.SimulationError{
		Step:    e.tick + 1,
		Time:    e.time,
		Detail:  detail,
		Wrapped: dynamo.ErrPhysicsInvariant,
	}
	e.halted = err
	e.logger.Error("engine halted", "err", err, "last", e.Snapshot())
	return e.Snapshot(), err
}

// publish builds an immutable snapshot from the current state and makes it
// visible to readers.
func (e *Engine) publish(p tickPower) *dynamo.Snapshot {
	floaters := make([]dynamo.FloaterSnapshot, len(e.floaters))
	for i := range e.floaters {
		floaters[i] = e.floaters[i].Snapshot(e.loop, e.forces[i])
	}
	s := &dynamo.Snapshot{
		Tick:            e.tick,
		Time:            e.time,
		Floaters:        floaters,
		ChainSpeed:      e.drivetrain.ChainSpeed(),
		ChainOmega:      e.drivetrain.ChainOmega,
		ClutchEngaged:   e.drivetrain.Engaged,
		FlywheelOmega:   e.drivetrain.FlywheelOmega,
		PulsePhase:      p.phase,
		GeneratorTorque: p.torque,
		GeneratorPower:  p.generator,
		CompressorPower: p.compressor,
		NetPower:        p.generator - p.compressor,
		TankPressure:    e.pneumatics.TankPressure,
		Injections:      e.pneumatics.Injections,
		AirMassKg:       e.pneumatics.AirMass,
		Ledger:          e.ledger.Totals(),
		Skips:           e.skips,
	}
	e.snap.Store(s)
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
