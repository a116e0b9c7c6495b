package physics

import (
	"math"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
)

// Loop is the chain path: a vertical ascending run of Height metres followed
// by a descending run of the same length. Position 0 is the bottom threshold,
// position Height the top threshold.
type Loop struct {
	Height         float64
	TransitionArc  float64 // ramp length on each side of the apex
	ApexSubmersion float64 // submerged fraction at the apex
	InjectionZone  float64 // distance above the bottom threshold
}

func NewLoop(c config.TankConfig) Loop {
	return Loop{
		Height:         c.Height,
		TransitionArc:  c.TransitionArc,
		ApexSubmersion: c.ApexSubmersion,
		InjectionZone:  c.InjectionZone,
	}
}

// Length is the full loop length.
func (l Loop) Length() float64 { return 2 * l.Height }

// Wrap maps any position into [0, Length).
func (l Loop) Wrap(s float64) float64 {
	n := l.Length()
	s = math.Mod(s, n)
	if s < 0 {
		s += n
	}
	if s >= n {
		s = 0
	}
	return s
}

func (l Loop) Side(s float64) dynamo.Side {
	if s < l.Height {
		return dynamo.Ascending
	}
	return dynamo.Descending
}

// HeightAt is the elevation above the bottom threshold.
func (l Loop) HeightAt(s float64) float64 {
	if s < l.Height {
		return s
	}
	return l.Length() - s
}

// SubmergedFraction is 1 along the loop except near the apex, where it ramps
// linearly down to ApexSubmersion so buoyancy never switches as a step.
func (l Loop) SubmergedFraction(s float64) float64 {
	if l.TransitionArc <= 0 {
		return 1
	}
	d := math.Abs(s - l.Height)
	if d >= l.TransitionArc {
		return 1
	}
	return l.ApexSubmersion + (1-l.ApexSubmersion)*d/l.TransitionArc
}

// InInjectionZone reports whether s lies in the zone just above the bottom threshold.
func (l Loop) InInjectionZone(s float64) bool {
	return s >= 0 && s < l.InjectionZone
}

// Crossing is a threshold passed by a forward move.
type Crossing int

const (
	NoCrossing Crossing = iota
	CrossedTop
	CrossedBottom
)

// Advance moves s by ds and returns the thresholds passed going forward, in
// the order they were reached. A long move may pass both thresholds or lap
// the loop. Backward moves wrap but never trigger events.
func (l Loop) Advance(s, ds float64) (float64, []Crossing) {
	raw := s + ds
	next := l.Wrap(raw)
	if ds <= 0 {
		return next, nil
	}
	// thresholds sit at multiples of Height: odd is the top, even the bottom
	k := 1
	if s >= l.Height {
		k = 2
	}
	var crossed []Crossing
	for raw >= float64(k)*l.Height {
		if k%2 == 1 {
			crossed = append(crossed, CrossedTop)
		} else {
			crossed = append(crossed, CrossedBottom)
		}
		k++
	}
	return next, crossed
}
