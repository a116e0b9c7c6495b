package physics

import (
	"math"

	"github.com/san-kum/buoysim/internal/config"
)

// Generator is the electrical load on the flywheel shaft.
type Generator struct {
	TargetPower    float64
	SoftStartOmega float64
	MaxOmega       float64
	OverspeedGain  float64
	MaxTorque      float64
}

func NewGenerator(c config.GeneratorConfig) Generator {
	return Generator{
		TargetPower:    c.TargetPower,
		SoftStartOmega: c.SoftStartOmega,
		MaxOmega:       c.MaxOmega,
		OverspeedGain:  c.OverspeedGain,
		MaxTorque:      c.MaxTorque,
	}
}

// LoadTorque is the braking torque the generator demands at shaft speed
// omega. Below SoftStartOmega the torque grows quadratically from zero and
// meets the constant-power branch P/omega at SoftStartOmega. Above MaxOmega
// it rises linearly for overspeed protection.
func (g Generator) LoadTorque(omega float64) float64 {
	if omega <= 0 || math.IsNaN(omega) {
		return 0
	}
	var tau float64
	switch {
	case omega < g.SoftStartOmega:
		r := omega / g.SoftStartOmega
		tau = g.TargetPower / g.SoftStartOmega * r * r
	case omega <= g.MaxOmega:
		tau = g.TargetPower / omega
	default:
		tau = g.TargetPower/g.MaxOmega + g.OverspeedGain*(omega-g.MaxOmega)
	}
	return g.ClampTorque(tau)
}

// ClampTorque limits a commanded torque to [0, MaxTorque].
func (g Generator) ClampTorque(tau float64) float64 {
	if math.IsNaN(tau) || tau < 0 {
		return 0
	}
	return math.Min(tau, g.MaxTorque)
}
