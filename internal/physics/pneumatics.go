package physics

import (
	"math"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
)

// SkipReason names why a pneumatic operation was refused.
type SkipReason int

const (
	NotSkipped SkipReason = iota
	SkipNotEmpty
	SkipTankStarved
	SkipNotFilled
)

func (r SkipReason) String() string {
	switch r {
	case SkipNotEmpty:
		return "floater not empty"
	case SkipTankStarved:
		return "tank pressure below minimum"
	case SkipNotFilled:
		return "floater not filled"
	default:
		return "none"
	}
}

// Pneumatics is the compressor, its air tank and the injection and vent valves.
type Pneumatics struct {
	TankPressure     float64 // Pa absolute
	TankVolume       float64
	CompressorPower  float64 // W
	MinPressure      float64
	MaxPressure      float64
	Efficiency       float64
	Gamma            float64
	Isothermal       bool // H2 mode
	CumulativeEnergy float64
	Injections       int
	AirMass          float64 // kg injected so far

	atmospheric float64
}

func NewPneumatics(c config.PneumaticsConfig, atmospheric float64, isothermal bool) *Pneumatics {
	return &Pneumatics{
		TankPressure:    c.InitialPressure,
		TankVolume:      c.TankVolume,
		CompressorPower: c.CompressorPower,
		MinPressure:     c.MinPressure,
		MaxPressure:     c.MaxPressure,
		Efficiency:      c.Efficiency,
		Gamma:           c.Gamma,
		Isothermal:      isothermal,
		atmospheric:     atmospheric,
	}
}

// Retune updates the non-structural settings without touching the tank state.
func (p *Pneumatics) Retune(c config.PneumaticsConfig, atmospheric float64, isothermal bool) {
	p.CompressorPower = c.CompressorPower
	p.MinPressure = c.MinPressure
	p.MaxPressure = c.MaxPressure
	p.Efficiency = c.Efficiency
	p.Gamma = c.Gamma
	p.Isothermal = isothermal
	p.atmospheric = atmospheric
	p.TankPressure = math.Min(p.TankPressure, p.MaxPressure)
}

// FreeAirVolume is the atmospheric-pressure volume of air that fills volume
// at depthPressure.
func (p *Pneumatics) FreeAirVolume(volume, depthPressure float64) float64 {
	return volume * depthPressure / p.atmospheric
}

// CompressionWork is the electrical energy to deliver volume of air at
// depthPressure. Isothermal: P_atm*V*ln(P_depth/P_atm). Adiabatic:
// (P_depth*V - P_atm*V)/(gamma-1).
func (p *Pneumatics) CompressionWork(volume, depthPressure float64) float64 {
	var w float64
	if p.Isothermal {
		w = p.atmospheric * volume * math.Log(depthPressure/p.atmospheric)
	} else {
		w = (depthPressure*volume - p.atmospheric*volume) / (p.Gamma - 1)
	}
	return w / p.Efficiency
}

// Inject fills f with air at depthPressure and returns the energy spent.
// Refused injections return 0 with a reason and leave every field unchanged.
func (p *Pneumatics) Inject(f *Floater, depthPressure float64, fluid Fluid) (float64, SkipReason) {
	if f.State != dynamo.Empty {
		return 0, SkipNotEmpty
	}
	if p.TankPressure < p.MinPressure {
		return 0, SkipTankStarved
	}

	energy := p.CompressionWork(f.Volume, depthPressure)
	free := p.FreeAirVolume(f.Volume, depthPressure)

	f.BeginFill()
	p.TankPressure = math.Max(0, p.TankPressure-p.atmospheric*free/p.TankVolume)
	p.CumulativeEnergy += energy
	p.Injections++
	p.AirMass += fluid.AirMass(depthPressure, f.Volume)
	return energy, NotSkipped
}

// Vent opens f to the water. It recovers nothing.
func (p *Pneumatics) Vent(f *Floater) SkipReason {
	if !f.BeginVent() {
		return SkipNotFilled
	}
	return NotSkipped
}

// Replenish runs the compressor for dt, raising tank pressure up to MaxPressure.
func (p *Pneumatics) Replenish(dt float64) {
	p.TankPressure = math.Min(p.MaxPressure, p.TankPressure+p.CompressorPower*dt/p.TankVolume)
}
