package control

import (
	"fmt"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// PID keeps the clutch closed and sets generator torque to hold the chain at
// Target rad/s. Too fast means more torque; the engine clamps the output to
// the generator's torque range.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(obs dynamo.Observation, t float64) dynamo.Command {
	err := obs.ChainOmega - p.Target

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.command(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.command(p.Kp*err + p.Ki*p.integral)
	}

	derivative := (err - p.prevErr) / dt
	u := p.Kp*err + p.Ki*(p.integral+err*dt) + p.Kd*derivative
	// no windup while the generator cannot push back
	if u > 0 || err > 0 {
		p.integral += err * dt
	}

	p.prevErr = err
	p.prevT = t
	return p.command(u)
}

func (p *PID) command(torque float64) dynamo.Command {
	if torque < 0 {
		torque = 0
	}
	return dynamo.Command{Engage: true, GeneratorTorque: torque}
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"ki":     p.Ki,
		"kd":     p.Kd,
		"target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	default:
		return fmt.Errorf("%w: pid %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
