package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/experiment"
)

// Bounds clamps a parameter during tuning.
type Bounds struct{ Min, Max float64 }

// Tuner adjusts continuous parameters with Nelder-Mead. Each evaluation is
// a full run, so MaxEvals bounds the cost.
type Tuner struct {
	Params   []string
	Bounds   map[string]Bounds
	MaxEvals int
	Simplex  float64 // initial simplex edge as a fraction of the start value
}

// TuneResult is the best point found.
type TuneResult struct {
	Best        Candidate
	Evaluations int
}

// Tune starts from the parameters' values in base.
func (t *Tuner) Tune(ctx context.Context, base config.Config, obj Objective) (TuneResult, error) {
	if err := obj.validate(); err != nil {
		return TuneResult{}, err
	}
	if len(t.Params) == 0 {
		return TuneResult{}, errors.New("tune: no parameters")
	}
	start := base.GetParams()
	x0 := make([]float64, len(t.Params))
	for i, name := range t.Params {
		v, ok := start[name]
		if !ok {
			return TuneResult{}, fmt.Errorf("tune: unknown parameter %s", name)
		}
		x0[i] = v
	}

	var (
		res      TuneResult
		bestCost = math.Inf(1)
	)
	eval := func(x []float64) float64 {
		if ctx.Err() != nil {
			return math.Inf(1)
		}
		params := t.point(x)
		res.Evaluations++

		cfg, err := apply(base, params)
		if err != nil {
			return math.Inf(1)
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return math.Inf(1)
		}
		out, err := exp.Run(ctx)
		if err != nil {
			return math.Inf(1)
		}
		v, err := metricOf(out, obj.Metric)
		if err != nil || math.IsNaN(v) {
			return math.Inf(1)
		}
		c := obj.cost(v)
		if c < bestCost {
			bestCost = c
			res.Best = Candidate{Params: params, Value: v}
		}
		return c
	}

	maxEvals := t.MaxEvals
	if maxEvals <= 0 {
		maxEvals = 50
	}
	method := &optimize.NelderMead{}
	if t.Simplex > 0 {
		method.SimplexSize = t.Simplex * math.Max(1, maxAbs(x0))
	}
	_, err := optimize.Minimize(
		optimize.Problem{Func: eval},
		x0,
		&optimize.Settings{FuncEvaluations: maxEvals},
		method,
	)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if math.IsInf(bestCost, 1) {
		if err == nil {
			err = errors.New("no evaluation completed")
		}
		return res, fmt.Errorf("tune: %w", err)
	}
	if err != nil {
		slog.Debug("nelder-mead stopped early", "err", err, "evaluations", res.Evaluations)
	}
	return res, nil
}

// point maps optimizer coordinates to clamped named parameters.
func (t *Tuner) point(x []float64) map[string]float64 {
	params := make(map[string]float64, len(x))
	for i, name := range t.Params {
		v := x[i]
		if b, ok := t.Bounds[name]; ok {
			v = math.Min(math.Max(v, b.Min), b.Max)
		}
		params[name] = v
	}
	return params
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
