package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/sim"
)

// Result is the outcome of one run.
type Result struct {
	Config     config.Config
	Trace      []*dynamo.Snapshot // every RecordEvery-th tick, plus the first and last
	Final      *dynamo.Snapshot
	Metrics    map[string]float64
	StepsTaken int
}

// Experiment drives one engine for the configured duration.
type Experiment struct {
	cfg     config.Config
	engine  *sim.Engine
	metrics []dynamo.Metric
}

// New builds the engine and attaches the default metrics.
func New(cfg config.Config, opts ...sim.Option) (*Experiment, error) {
	eng, err := sim.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, engine: eng}
	for _, m := range metrics.Defaults() {
		e.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) AddMetric(m dynamo.Metric) {
	e.metrics = append(e.metrics, m)
	e.engine.AddMetric(m)
}

// Engine returns the underlying engine for adding observers or scripting.
func (e *Experiment) Engine() *sim.Engine { return e.engine }

// Steps is the number of ticks in the configured duration.
func (e *Experiment) Steps() int {
	return int(math.Round(e.cfg.Sim.Duration / e.cfg.Sim.Dt))
}

// Run steps the engine until the duration elapses, ctx is cancelled or the
// engine halts. The partial result is returned alongside any error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	return e.RunWithHook(ctx, nil)
}

// RunWithHook calls before(tick) ahead of every step. Hosts use it to stage
// configuration changes between ticks.
func (e *Experiment) RunWithHook(ctx context.Context, before func(tick int) error) (*Result, error) {
	steps := e.Steps()
	every := max(e.cfg.Sim.RecordEvery, 1)
	res := &Result{
		Config:  e.cfg,
		Trace:   make([]*dynamo.Snapshot, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}
	res.Trace = append(res.Trace, e.engine.Snapshot())

	finish := func(err error) (*Result, error) {
		res.Final = e.engine.Snapshot()
		if last := res.Trace[len(res.Trace)-1]; last != res.Final {
			res.Trace = append(res.Trace, res.Final)
		}
		for _, m := range e.metrics {
			res.Metrics[m.Name()] = m.Value()
		}
		return res, err
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return finish(ctx.Err())
		default:
		}

		if before != nil {
			if err := before(i); err != nil {
				return finish(fmt.Errorf("tick %d: %w", i, err))
			}
		}

		snap, err := e.engine.Step(e.cfg.Sim.Dt)
		if err != nil {
			return finish(err)
		}
		res.StepsTaken++
		if (i+1)%every == 0 {
			res.Trace = append(res.Trace, snap)
		}
	}
	return finish(nil)
}
