package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// StallThreshold is the chain speed, in m/s, below which the chain counts as stalled.
const StallThreshold = 0.05

var registry = map[string]func() dynamo.Metric{
	"mean_net_power":        func() dynamo.Metric { return NewMeanNetPower() },
	"mean_generator_power":  func() dynamo.Metric { return NewMeanGeneratorPower() },
	"mean_compressor_power": func() dynamo.Metric { return NewMeanCompressorPower() },
	"net_energy":            func() dynamo.Metric { return NewNetEnergy() },
	"conservation_drift":    func() dynamo.Metric { return NewConservationDrift() },
	"stall_fraction":        func() dynamo.Metric { return NewStallFraction(StallThreshold) },
	"control_effort":        func() dynamo.Metric { return NewControlEffort() },
	"clutch_duty":           func() dynamo.Metric { return NewClutchDuty() },
}

// New returns a fresh metric by name.
func New(name string) (dynamo.Metric, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Names lists the registered metrics in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults is the set reported for every run.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewMeanNetPower(),
		NewMeanGeneratorPower(),
		NewMeanCompressorPower(),
		NewNetEnergy(),
		NewConservationDrift(),
		NewStallFraction(StallThreshold),
		NewClutchDuty(),
	}
}
