package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/experiment"
)

// GridSearch evaluates every combination of the listed parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params with %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every combination on top of base and returns the best
// candidate together with all of them in grid order. Combinations that fail
// validation or halt carry their error and never win.
func (g *GridSearch) Search(ctx context.Context, base config.Config, obj Objective) (Candidate, []Candidate, error) {
	if err := obj.validate(); err != nil {
		return Candidate{}, nil, err
	}

	var combos []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &combos)

	all := make([]Candidate, len(combos))
	cfgs := make([]config.Config, 0, len(combos))
	slots := make([]int, 0, len(combos))
	for i, params := range combos {
		all[i].Params = params
		cfg, err := apply(base, params)
		if err != nil {
			all[i].Err = err
			continue
		}
		cfgs = append(cfgs, cfg)
		slots = append(slots, i)
	}

	results, errs := experiment.RunAll(ctx, cfgs, g.Workers)
	if err := ctx.Err(); err != nil {
		return Candidate{}, all, err
	}

	bestIdx := -1
	for j, idx := range slots {
		c := &all[idx]
		if errs[j] != nil {
			c.Err = errs[j]
			continue
		}
		c.Value, c.Err = metricOf(results[j], obj.Metric)
		if c.Err != nil {
			continue
		}
		if bestIdx < 0 || obj.better(c.Value, all[bestIdx].Value) {
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return Candidate{}, all, errors.New("grid search: no combination completed")
	}

	slog.Debug("grid search done", "combinations", len(all), "metric", obj.Metric, "best", all[bestIdx].Value)
	return all[bestIdx], all, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[g.paramNames[depth]] = val
		g.searchRecursive(depth+1, next, out)
	}
}
