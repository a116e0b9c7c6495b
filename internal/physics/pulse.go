package physics

import "github.com/san-kum/buoysim/internal/dynamo"

// PulseScheduler is the H3 timer. It alternates between Coasting (clutch
// open) and Pulsing (clutch closed) on fixed durations, starting in Coasting.
type PulseScheduler struct {
	Coast float64
	Pulse float64

	phase   dynamo.PulsePhase
	elapsed float64
}

func NewPulseScheduler(h PulseCoast) *PulseScheduler {
	return &PulseScheduler{Coast: h.Coast, Pulse: h.Pulse, phase: dynamo.Coasting}
}

func (p *PulseScheduler) Phase() dynamo.PulsePhase { return p.phase }

// Elapsed is the time spent in the current phase.
func (p *PulseScheduler) Elapsed() float64 { return p.elapsed }

func (p *PulseScheduler) duration() float64 {
	if p.phase == dynamo.Pulsing {
		return p.Pulse
	}
	return p.Coast
}

// Advance moves the timer forward by dt and returns the phase in effect at
// the end of the interval. Leftover time carries into the next phase.
func (p *PulseScheduler) Advance(dt float64) dynamo.PulsePhase {
	if p.Coast <= 0 || p.Pulse <= 0 {
		return p.phase
	}
	p.elapsed += dt
	for p.elapsed >= p.duration() {
		p.elapsed -= p.duration()
		if p.phase == dynamo.Pulsing {
			p.phase = dynamo.Coasting
		} else {
			p.phase = dynamo.Pulsing
		}
	}
	return p.phase
}

// Retune changes the durations without resetting the current phase.
func (p *PulseScheduler) Retune(h PulseCoast) {
	p.Coast = h.Coast
	p.Pulse = h.Pulse
}

func (p *PulseScheduler) Reset() {
	p.phase = dynamo.Coasting
	p.elapsed = 0
}
