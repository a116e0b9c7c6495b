package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
)

// ParameterSweep runs one simulation per evenly spaced value of Param.
type ParameterSweep struct {
	Param   string
	Min     float64
	Max     float64
	Steps   int
	Workers int
}

// SweepResult is one point of a sweep.
type SweepResult struct {
	Value   float64
	Final   *dynamo.Snapshot
	Metrics map[string]float64
	Err     error
}

// Values returns the sampled parameter values, Min and Max included.
func (p *ParameterSweep) Values() []float64 {
	if p.Steps <= 1 {
		return []float64{p.Min}
	}
	step := (p.Max - p.Min) / float64(p.Steps-1)
	vals := make([]float64, p.Steps)
	for i := range vals {
		vals[i] = p.Min + float64(i)*step
	}
	return vals
}

// RunSweep executes the sweep on top of base. Points that fail validation or
// halt keep their error; the sweep itself fails only on bad input.
func RunSweep(ctx context.Context, base config.Config, p *ParameterSweep) ([]SweepResult, error) {
	vals := p.Values()
	cfgs := make([]config.Config, len(vals))
	for i, v := range vals {
		cfgs[i] = base
		if err := cfgs[i].SetParam(p.Param, v); err != nil {
			return nil, err
		}
	}

	results, errs := experiment.RunAll(ctx, cfgs, p.Workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]SweepResult, len(vals))
	for i, res := range results {
		out[i] = SweepResult{Value: vals[i], Err: errs[i]}
		if res != nil {
			out[i].Final = res.Final
			out[i].Metrics = res.Metrics
		}
		slog.Debug("sweep point", "param", p.Param, "value", vals[i], "err", errs[i])
	}
	return out, nil
}

// MonteCarloConfig perturbs parameters uniformly by up to ±Spread of their
// base value.
type MonteCarloConfig struct {
	Params  []string
	Spread  float64
	Trials  int
	Seed    uint64
	Workers int
}

// MonteCarloResult is one perturbed run.
type MonteCarloResult struct {
	Trial  int
	Params map[string]float64
	Net    float64 // mean net power, W
	Halted bool
	Err    error
}

// RunMonteCarlo runs Trials perturbed copies of base. The same seed gives the
// same trials.
func RunMonteCarlo(ctx context.Context, base config.Config, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.Trials <= 0 {
		return nil, errors.New("monte carlo: trials must be positive")
	}
	start := base.GetParams()
	for _, name := range mc.Params {
		if _, ok := start[name]; !ok {
			return nil, fmt.Errorf("monte carlo: %w: %s", dynamo.ErrUnknownParam, name)
		}
	}

	rng := rand.New(rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15))
	out := make([]MonteCarloResult, mc.Trials)
	cfgs := make([]config.Config, mc.Trials)
	for i := range cfgs {
		cfgs[i] = base
		params := make(map[string]float64, len(mc.Params))
		for _, name := range mc.Params {
			v := start[name] * (1 + (rng.Float64()*2-1)*mc.Spread)
			params[name] = v
			_ = cfgs[i].SetParam(name, v)
		}
		out[i] = MonteCarloResult{Trial: i, Params: params}
	}

	results, errs := experiment.RunAll(ctx, cfgs, mc.Workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, res := range results {
		out[i].Err = errs[i]
		out[i].Halted = errors.Is(errs[i], dynamo.ErrPhysicsInvariant)
		if res != nil {
			out[i].Net = res.Metrics["mean_net_power"]
		}
	}
	return out, nil
}

// MonteCarloStats counts trials that completed and trials that halted or
// failed validation.
func MonteCarloStats(results []MonteCarloResult) (completed, failed int) {
	for _, r := range results {
		if r.Err == nil {
			completed++
		} else {
			failed++
		}
	}
	return
}
