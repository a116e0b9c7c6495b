package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/physics"
	"github.com/san-kum/buoysim/internal/sim"
)

func runPreset(name string) (config.Config, []*dynamo.Snapshot, *metrics.MeanPower) {
	cfg, ok := config.GetPreset(name)
	Expect(ok).To(BeTrue(), "preset %s", name)

	eng, err := sim.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	net := metrics.NewMeanNetPower()
	eng.AddMetric(net)

	steps := int(math.Round(cfg.Sim.Duration / cfg.Sim.Dt))
	trace := make([]*dynamo.Snapshot, 0, steps)
	for i := 0; i < steps; i++ {
		s, err := eng.Step(cfg.Sim.Dt)
		Expect(err).NotTo(HaveOccurred(), "step %d", i)
		trace = append(trace, s)
	}
	return cfg, trace, net
}

// dragLoss replays a recorded speed profile through fluid and returns the
// energy drag would have dissipated.
func dragLoss(cfg config.Config, fluid physics.Fluid, trace []*dynamo.Snapshot) float64 {
	loop := physics.NewLoop(cfg.Tank)
	var loss float64
	for _, s := range trace {
		for _, fs := range s.Floaters {
			f := physics.Floater{
				Volume:       cfg.Floaters.Volume,
				MassEmpty:    cfg.Floaters.MassEmpty,
				MassFull:     cfg.Floaters.MassFull,
				FillProgress: fs.FillProgress,
				Position:     fs.Position,
				Velocity:     s.ChainSpeed,
			}
			d := f.ComputeForces(fluid, loop).Drag
			loss -= d * s.ChainSpeed * cfg.Sim.Dt
		}
	}
	return loss
}

var _ = Describe("Engine", func() {
	Describe("Scenario A: unassisted baseline", func() {
		var (
			cfg   config.Config
			trace []*dynamo.Snapshot
			net   *metrics.MeanPower
		)

		BeforeEach(func() {
			cfg, trace, net = runPreset("scenario_a")
		})

		It("runs 60 s at dt 0.1 s", func() {
			Expect(trace).To(HaveLen(600))
			Expect(trace[599].Time).To(BeNumerically("~", 60, 1e-9))
		})

		It("consumes more compressor energy than it generates", func() {
			last := trace[len(trace)-1].Ledger
			Expect(last.CompressorEnergyJ).To(BeNumerically(">", last.GeneratorEnergyJ))
			Expect(last.NetEnergyJ).To(BeNumerically("<", 0))
			Expect(net.Value()).To(BeNumerically("<", 0))
		})

		It("keeps the ledger balanced", func() {
			for _, s := range trace {
				Expect(metrics.Balanced(s.Ledger, 1e-6*math.Max(1, math.Abs(s.Ledger.BuoyantWorkJ)))).To(BeTrue())
			}
			last := trace[len(trace)-1].Ledger
			Expect(last.ResidualJ).To(BeNumerically("~", 0, 1e-6*last.BuoyantWorkJ))
		})

		It("reaches a steady chain speed", func() {
			Expect(trace[len(trace)-1].ChainSpeed).To(BeNumerically(">", 0.5))
		})

		It("injects with the adiabatic formula", func() {
			last := trace[len(trace)-1]
			Expect(last.Injections).To(BeNumerically(">", 0))
			perInjection := last.Ledger.CompressorEnergyJ / float64(last.Injections)
			Expect(perInjection).To(BeNumerically("~", 9810, 1e-6))
		})

		Context("Scenario B: descending-side density reduced by 10%", func() {
			It("loses less energy to drag on the same speed profile", func() {
				b, ok := config.GetPreset("scenario_b")
				Expect(ok).To(BeTrue())

				fluidA := physics.NewFluid(cfg.Fluid, physics.NewHypotheses(cfg.Hypotheses))
				fluidB := physics.NewFluid(b.Fluid, physics.NewHypotheses(b.Hypotheses))

				lossA := dragLoss(cfg, fluidA, trace)
				lossB := dragLoss(cfg, fluidB, trace)
				Expect(lossA).To(BeNumerically(">", 0))
				Expect(lossB).To(BeNumerically("<", lossA))
			})

			It("recorded drag matches the replayed profile", func() {
				fluidA := physics.NewFluid(cfg.Fluid, physics.NewHypotheses(cfg.Hypotheses))
				replay := dragLoss(cfg, fluidA, trace)
				Expect(replay).To(BeNumerically(">", 0))
				Expect(trace[len(trace)-1].Ledger.DragLossJ).To(BeNumerically(">", 0))
			})
		})
	})

	Describe("H2 thermal mode", func() {
		It("injects isothermally at P_atm·V·ln(P_depth/P_atm) per floater", func() {
			_, trace, _ := runPreset("thermal")
			last := trace[len(trace)-1]
			Expect(last.Injections).To(BeNumerically(">", 0))
			perInjection := last.Ledger.CompressorEnergyJ / float64(last.Injections)
			Expect(perInjection).To(BeNumerically("~", 2744.3, 0.1))
		})
	})

	Describe("all hypotheses together", func() {
		It("runs to completion without an invariant violation", func() {
			_, trace, _ := runPreset("all_hypotheses")
			last := trace[len(trace)-1]
			Expect(last.Ledger.ResidualJ).To(BeNumerically("~", 0, 1e-6*math.Max(1, last.Ledger.BuoyantWorkJ)))
			Expect(last.PulsePhase).NotTo(Equal(dynamo.PhaseNone))
		})
	})

	Describe("tank starvation", func() {
		It("skips injections instead of failing", func() {
			cfg := config.Default()
			cfg.Pneumatics.CompressorPower = 0
			eng, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			var s *dynamo.Snapshot
			for i := 0; i < 1200; i++ {
				s, err = eng.Step(0.1)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Skips.TankStarved).To(BeNumerically(">", 0))
			Expect(s.TankPressure).To(BeNumerically("<", cfg.Pneumatics.MinPressure))
		})
	})
})
