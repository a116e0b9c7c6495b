package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/analysis"
	"github.com/san-kum/buoysim/internal/automation"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/sim"
	"github.com/san-kum/buoysim/internal/storage"
)

func newRunCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if name == "" {
				name = preset
				if configFile != "" {
					name = "custom"
				}
			}

			exp, err := experiment.New(cfg, sim.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			res, runErr := exp.Run(ctx)
			slog.Info("run finished", "name", name, "steps", res.StepsTaken, "elapsed", time.Since(start))
			return saveAndReport(name, res, runErr)
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&name, "name", "", "run name (defaults to the preset)")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted yaml scenario and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, runErr := automation.RunScenario(ctx, s, sim.WithLogger(slog.Default()))
			if res == nil {
				return runErr
			}
			name := s.Name
			if name == "" {
				name = "scenario"
			}
			return saveAndReport(name, res, runErr)
		},
	}
}

// saveAndReport stores a possibly partial run and prints its summary. The
// run error is returned after saving so halted runs stay inspectable.
func saveAndReport(name string, res *experiment.Result, runErr error) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, res, runErr)
	if err != nil {
		return err
	}

	rows := make([]storage.TraceRow, len(res.Trace))
	for i, s := range res.Trace {
		rows[i] = storage.NewTraceRow(s)
	}
	fmt.Println(renderSummary(runID, analysis.Summarize(rows)))
	if runErr != nil {
		return fmt.Errorf("run %s stopped after %d steps: %w", runID, res.StepsTaken, runErr)
	}
	return nil
}

func renderSummary(runID string, s analysis.Summary) string {
	return panel("run "+runID,
		kv("duration", "%.2f s (%d samples)", s.Duration, s.Samples),
		kv("chain speed", "%.3f ± %.3f m/s (peak %.3f)", s.MeanChainSpeed, s.StdChainSpeed, s.PeakChainSpeed),
		kv("generator power", "%.1f W (peak %.1f)", s.MeanGeneratorPower, s.PeakGeneratorPower),
		kv("compressor power", "%.1f W", s.MeanCompressorPower),
		signed("net power", "%.1f W", s.MeanNetPower),
		signed("net energy", "%.1f J", s.NetEnergyJ),
		kv("efficiency", "%.1f %%", 100*s.Efficiency),
		kv("drag share", "%.1f %%", 100*s.DragShare),
		kv("energy per injection", "%.1f J", s.EnergyPerInjection),
		kv("clutch duty", "%.1f %%", 100*s.ClutchDuty),
		kv("min tank pressure", "%.0f Pa", s.MinTankPressure),
		kv("dominant frequency", "%.3f Hz", s.DominantHz),
		kv("max ledger residual", "%.3g J", s.MaxResidualJ),
		kv("skipped operations", "%d", s.Skips),
	)
}
