package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/automation"
	"github.com/san-kum/buoysim/internal/optim"
)

func newSweepCmd() *cobra.Command {
	var sw automation.ParameterSweep
	var metric string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			sw.Workers = workers
			points, err := automation.RunSweep(cmd.Context(), cfg, &sw)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\tNET J\tSTATUS\n", strings.ToUpper(sw.Param), strings.ToUpper(metric))
			for _, p := range points {
				status := "ok"
				if p.Err != nil {
					status = p.Err.Error()
				}
				var net float64
				if p.Final != nil {
					net = p.Final.Ledger.NetEnergyJ
				}
				fmt.Fprintf(w, "%.4g\t%.4g\t%.0f\t%s\n", p.Value, p.Metrics[metric], net, status)
			}
			return w.Flush()
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&sw.Param, "param", "generator.target_power", "parameter to sweep")
	cmd.Flags().Float64Var(&sw.Min, "min", 100, "first value")
	cmd.Flags().Float64Var(&sw.Max, "max", 1000, "last value")
	cmd.Flags().IntVar(&sw.Steps, "steps", 10, "number of values")
	cmd.Flags().StringVar(&metric, "metric", "mean_net_power", "metric column")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 uses every CPU)")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		metric   string
		minimize bool
		grid     []string
		params   []string
		maxEvals int
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "search parameters for the best metric value",
		Long: "tune runs a grid search over every --grid name=values entry, then " +
			"refines the --param list with Nelder-Mead starting from the best grid point.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(grid) == 0 && len(params) == 0 {
				return fmt.Errorf("nothing to tune: pass --grid or --param")
			}
			base, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			obj := optim.Objective{Metric: metric, Maximize: !minimize}

			var best optim.Candidate
			if len(grid) > 0 {
				var names []string
				var ranges [][]float64
				for _, g := range grid {
					name, spec, ok := strings.Cut(g, "=")
					if !ok {
						return fmt.Errorf("--grid %q: want name=values", g)
					}
					vals, err := parseRange(spec)
					if err != nil {
						return err
					}
					names = append(names, name)
					ranges = append(ranges, vals)
				}
				gs, err := optim.NewGridSearch(names, ranges)
				if err != nil {
					return err
				}
				gs.Workers = workers
				var all []optim.Candidate
				best, all, err = gs.Search(cmd.Context(), base, obj)
				if err != nil {
					return err
				}
				failed := 0
				for _, c := range all {
					if c.Err != nil {
						failed++
					}
				}
				fmt.Println(panel("grid search",
					kv("combinations", "%d (%d failed)", len(all), failed),
					kv(metric, "%.4g", best.Value),
				))
				for name, v := range best.Params {
					if err := base.SetParam(name, v); err != nil {
						return err
					}
				}
			}

			if len(params) > 0 {
				t := &optim.Tuner{Params: params, MaxEvals: maxEvals, Simplex: 0.1}
				res, err := t.Tune(cmd.Context(), base, obj)
				if err != nil {
					return err
				}
				best = res.Best
				fmt.Println(panel("nelder-mead",
					kv("evaluations", "%d", res.Evaluations),
					kv(metric, "%.4g", best.Value),
				))
			}

			fields := []field{}
			for _, name := range slices.Sorted(maps.Keys(best.Params)) {
				fields = append(fields, kv(name, "%.6g", best.Params[name]))
			}
			fmt.Println(panel("best parameters", fields...))
			return nil
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&metric, "metric", "mean_net_power", "metric to optimize")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "minimize instead of maximize")
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "grid entry name=a,b,c or name=min:max:n, repeatable")
	cmd.Flags().StringSliceVar(&params, "param", nil, "parameters refined with nelder-mead")
	cmd.Flags().IntVar(&maxEvals, "max-evals", 40, "nelder-mead run budget")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs for the grid (0 uses every CPU)")
	return cmd
}
