// Package optim searches configuration parameters for the best value of a
// run metric.
package optim

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
)

// Objective names a metric reported by every run and its direction.
type Objective struct {
	Metric   string
	Maximize bool
}

func (o Objective) validate() error {
	for _, m := range metrics.Defaults() {
		if m.Name() == o.Metric {
			return nil
		}
	}
	return fmt.Errorf("metric %q is not reported by runs", o.Metric)
}

// better reports whether a improves on b.
func (o Objective) better(a, b float64) bool {
	if o.Maximize {
		return a > b
	}
	return a < b
}

// cost turns a metric value into something to minimize.
func (o Objective) cost(v float64) float64 {
	if o.Maximize {
		return -v
	}
	return v
}

// Candidate is one evaluated parameter set.
type Candidate struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// apply returns base with params set, validated.
func apply(base config.Config, params map[string]float64) (config.Config, error) {
	cfg := base
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if err := cfg.SetParam(name, params[name]); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func metricOf(res *experiment.Result, metric string) (float64, error) {
	v, ok := res.Metrics[metric]
	if !ok {
		return 0, fmt.Errorf("run did not report %s", metric)
	}
	return v, nil
}
