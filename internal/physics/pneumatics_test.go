package physics

import (
	"math"
	"testing"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
)

func testPneumatics(isothermal bool) *Pneumatics {
	cfg := config.Default()
	return NewPneumatics(cfg.Pneumatics, cfg.Fluid.AtmosphericPressure, isothermal)
}

func bottomPressure() float64 {
	return config.Default().InjectionPressure()
}

func TestCompressionWork(t *testing.T) {
	pd := bottomPressure()
	const patm = 101325.0
	const v = 0.04

	tests := []struct {
		name       string
		isothermal bool
		want       float64
	}{
		{"adiabatic", false, (pd*v - patm*v) / 0.4},
		{"isothermal", true, patm * v * math.Log(pd/patm)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPneumatics(tt.isothermal)
			got := p.CompressionWork(v, pd)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// 10 m of water over the baseline floater
	if got := testPneumatics(false).CompressionWork(v, pd); math.Abs(got-9810) > 1e-6 {
		t.Errorf("adiabatic baseline injection: got %v J, want 9810 J", got)
	}
	if got := testPneumatics(true).CompressionWork(v, pd); math.Abs(got-2744.3) > 0.1 {
		t.Errorf("isothermal baseline injection: got %v J, want 2744.3 J", got)
	}
}

func TestIsothermalCheaperThanAdiabatic(t *testing.T) {
	pd := bottomPressure()
	iso := testPneumatics(true).CompressionWork(0.04, pd)
	adi := testPneumatics(false).CompressionWork(0.04, pd)
	if iso >= adi {
		t.Errorf("isothermal %v J should be below adiabatic %v J", iso, adi)
	}
}

func TestInjectEmptyFloater(t *testing.T) {
	p := testPneumatics(false)
	f := testFloater()
	start := p.TankPressure

	energy, reason := p.Inject(f, bottomPressure(), testFluid())
	if reason != NotSkipped {
		t.Fatalf("unexpected skip: %v", reason)
	}
	if energy <= 0 {
		t.Errorf("expected positive energy, got %v", energy)
	}
	if f.State != dynamo.Filling {
		t.Errorf("floater state: got %v, want filling", f.State)
	}
	if p.Injections != 1 || p.CumulativeEnergy != energy {
		t.Errorf("counters: injections %d energy %v", p.Injections, p.CumulativeEnergy)
	}
	drop := p.atmospheric * p.FreeAirVolume(f.Volume, bottomPressure()) / p.TankVolume
	if math.Abs(start-p.TankPressure-drop) > 1e-6 {
		t.Errorf("tank drop: got %v, want %v", start-p.TankPressure, drop)
	}
	if p.AirMass <= 0 {
		t.Error("expected injected air mass to be tracked")
	}
}

func TestInjectFilledIsNoOp(t *testing.T) {
	p := testPneumatics(false)
	f := testFloater()
	f.State = dynamo.Filled
	f.FillProgress = 1
	floaterBefore := *f
	tankBefore := *p

	energy, reason := p.Inject(f, bottomPressure(), testFluid())
	if energy != 0 || reason != SkipNotEmpty {
		t.Errorf("got energy %v reason %v, want 0 and %v", energy, reason, SkipNotEmpty)
	}
	if *f != floaterBefore {
		t.Errorf("floater changed: %+v", *f)
	}
	if *p != tankBefore {
		t.Errorf("pneumatics changed: %+v", *p)
	}
}

func TestInjectStarvedTank(t *testing.T) {
	p := testPneumatics(false)
	p.TankPressure = p.MinPressure - 1
	f := testFloater()

	energy, reason := p.Inject(f, bottomPressure(), testFluid())
	if energy != 0 || reason != SkipTankStarved {
		t.Errorf("got energy %v reason %v, want 0 and %v", energy, reason, SkipTankStarved)
	}
	if f.State != dynamo.Empty {
		t.Errorf("starved injection changed floater to %v", f.State)
	}
}

func TestRepeatedInjectionsStarveTank(t *testing.T) {
	p := testPneumatics(false)
	p.CompressorPower = 0
	granted := 0
	for i := 0; i < 100; i++ {
		f := testFloater()
		if _, reason := p.Inject(f, bottomPressure(), testFluid()); reason == NotSkipped {
			granted++
		}
	}
	if granted == 0 || granted == 100 {
		t.Errorf("expected the tank to run dry part way, granted %d", granted)
	}
	if p.TankPressure < 0 {
		t.Errorf("negative tank pressure %v", p.TankPressure)
	}
}

func TestReplenishCapped(t *testing.T) {
	p := testPneumatics(false)
	p.TankPressure = p.MinPressure
	p.Replenish(0.1)
	want := p.MinPressure + p.CompressorPower*0.1/p.TankVolume
	if math.Abs(p.TankPressure-want) > 1e-9 {
		t.Errorf("replenish: got %v, want %v", p.TankPressure, want)
	}
	p.Replenish(1e6)
	if p.TankPressure != p.MaxPressure {
		t.Errorf("cap: got %v, want %v", p.TankPressure, p.MaxPressure)
	}
}

func TestVent(t *testing.T) {
	p := testPneumatics(false)
	f := testFloater()
	if reason := p.Vent(f); reason != SkipNotFilled {
		t.Errorf("vent on empty: got %v, want %v", reason, SkipNotFilled)
	}
	f.State = dynamo.Filled
	f.FillProgress = 1
	if reason := p.Vent(f); reason != NotSkipped {
		t.Errorf("vent on filled: got %v", reason)
	}
	if f.State != dynamo.Venting {
		t.Errorf("state: got %v, want venting", f.State)
	}
	if p.CumulativeEnergy != 0 {
		t.Errorf("venting spent energy: %v", p.CumulativeEnergy)
	}
}
