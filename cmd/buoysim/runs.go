package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/analysis"
	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tFLOATERS\tCTRL\tHYPOTHESES\tNET J\tSTATUS")
			for _, run := range runs {
				status := "ok"
				if run.Error != "" {
					status = "halted"
				}
				hyp := strings.Join(run.Hypotheses, ",")
				if hyp == "" {
					hyp = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.3fs\t%d\t%s\t%s\t%.0f\t%s\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Dt,
					run.Floaters,
					run.Controller,
					hyp,
					run.Ledger.NetEnergyJ,
					status,
				)
			}
			return w.Flush()
		},
	}
}

// plotSeries are the trace columns plot can draw.
var plotSeries = map[string]func(storage.TraceRow) float64{
	"chain_speed":      func(r storage.TraceRow) float64 { return r.ChainSpeed },
	"flywheel_omega":   func(r storage.TraceRow) float64 { return r.FlywheelOmega },
	"generator_power":  func(r storage.TraceRow) float64 { return r.GeneratorPower },
	"compressor_power": func(r storage.TraceRow) float64 { return r.CompressorPower },
	"net_power":        func(r storage.TraceRow) float64 { return r.NetPower },
	"tank_pressure":    func(r storage.TraceRow) float64 { return r.TankPressure },
	"net_energy":       func(r storage.TraceRow) float64 { return r.NetEnergyJ },
	"residual":         func(r storage.TraceRow) float64 { return r.ResidualJ },
}

func newPlotCmd() *cobra.Command {
	var series []string
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trace columns of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := storage.New(dataDir).LoadTrace(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("%s  %d samples\n\n", titleStyle.Render(args[0]), len(rows))
			for _, name := range series {
				get, ok := plotSeries[name]
				if !ok {
					return fmt.Errorf("unknown series %s", name)
				}
				data := make([]float64, len(rows))
				for i, r := range rows {
					data[i] = get(r)
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(name),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&series, "series", []string{"chain_speed", "net_power", "tank_pressure"}, "trace columns to plot")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [run_id]",
		Short: "summarize a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			rows, err := st.LoadTrace(args[0])
			if err != nil {
				return err
			}
			fmt.Println(renderSummary(meta.ID, analysis.Summarize(rows)))
			if meta.Error != "" {
				fmt.Println(errorStyle.Render("halted: ") + meta.Error)
			}
			return nil
		},
	}
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if out == "" || out == "-" {
				return st.ExportJSON(os.Stdout, args[0])
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := st.ExportJSON(f, args[0]); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", args[0], out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	var dump string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets, or write one as a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump != "" {
				cfg, ok := config.GetPreset(preset)
				if !ok {
					return fmt.Errorf("unknown preset: %s", preset)
				}
				return cfg.WriteYAML(dump)
			}
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "baseline", "preset to write with --write")
	cmd.Flags().StringVar(&dump, "write", "", "write the preset to this yaml file")
	return cmd
}
