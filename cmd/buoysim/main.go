package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/config"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	configFile string
	preset     string
	dt         float64
	duration   float64
	controller string
	sets       []string
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "buoysim",
		Short:         "buoyancy power-cycle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".buoysim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newPlotCmd(),
		newSummaryCmd(),
		newExportJSONCmd(),
		newPresetsCmd(),
		newSweepCmd(),
		newTuneCmd(),
		newScenarioCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch format {
	case "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// addConfigFlags registers the flags that resolve a configuration.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "baseline", "preset applied when no config file is given")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override, s")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration override, s")
	cmd.Flags().StringVar(&controller, "controller", "", "controller override: none, freewheel or pid")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "parameter override name=value, repeatable")
}

// resolveConfig loads the config file or preset, then applies flag
// overrides. Flags win over the file.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		p, ok := config.GetPreset(preset)
		if !ok {
			return cfg, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if cmd.Flags().Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Sim.Duration = duration
	}
	if cmd.Flags().Changed("controller") {
		cfg.Control.Mode = controller
	}
	for _, kv := range sets {
		name, value, err := parseSet(kv)
		if err != nil {
			return cfg, err
		}
		if err := cfg.SetParam(name, value); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func parseSet(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return "", 0, fmt.Errorf("--set %q: want name=value", kv)
	}
	switch raw {
	case "true":
		return name, 1, nil
	case "false":
		return name, 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("--set %s: %w", name, err)
	}
	return name, v, nil
}

// parseRange reads "a,b,c" or "min:max:n".
func parseRange(s string) ([]float64, error) {
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return nil, fmt.Errorf("range %q: want min:max:n", s)
		}
		if n == 1 {
			return []float64{lo}, nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = lo + float64(i)*(hi-lo)/float64(n-1)
		}
		return vals, nil
	}
	var vals []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
