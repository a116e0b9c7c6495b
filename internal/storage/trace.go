package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// TraceRow is one tick of trace.csv.
type TraceRow struct {
	Tick            int64   `csv:"tick"`
	Time            float64 `csv:"time"`
	ChainSpeed      float64 `csv:"chain_speed"`
	ChainOmega      float64 `csv:"chain_omega"`
	FlywheelOmega   float64 `csv:"flywheel_omega"`
	ClutchEngaged   bool    `csv:"clutch_engaged"`
	PulsePhase      string  `csv:"pulse_phase"`
	GeneratorTorque float64 `csv:"generator_torque"`
	GeneratorPower  float64 `csv:"generator_power"`
	CompressorPower float64 `csv:"compressor_power"`
	NetPower        float64 `csv:"net_power"`
	TankPressure    float64 `csv:"tank_pressure"`
	Injections      int     `csv:"injections"`
	AirMassKg       float64 `csv:"air_mass_kg"`
	BuoyantWorkJ    float64 `csv:"buoyant_work_j"`
	GravityWorkJ    float64 `csv:"gravity_work_j"`
	DragLossJ       float64 `csv:"drag_loss_j"`
	CompressorJ     float64 `csv:"compressor_energy_j"`
	GeneratorJ      float64 `csv:"generator_energy_j"`
	ClutchLossJ     float64 `csv:"clutch_loss_j"`
	FrictionLossJ   float64 `csv:"friction_loss_j"`
	NetEnergyJ      float64 `csv:"net_energy_j"`
	KineticEnergyJ  float64 `csv:"kinetic_energy_j"`
	ResidualJ       float64 `csv:"residual_j"`
	Skips           int     `csv:"skips"`
}

// FloaterRow is one floater at one tick in floaters.csv.
type FloaterRow struct {
	Tick         int64   `csv:"tick"`
	ID           int     `csv:"id"`
	Position     float64 `csv:"position"`
	Height       float64 `csv:"height"`
	Side         string  `csv:"side"`
	State        string  `csv:"state"`
	FillProgress float64 `csv:"fill_progress"`
	Mass         float64 `csv:"mass"`
	Buoyant      float64 `csv:"buoyant"`
	Weight       float64 `csv:"weight"`
	Drag         float64 `csv:"drag"`
}

func NewTraceRow(s *dynamo.Snapshot) TraceRow {
	l := s.Ledger
	return TraceRow{
		Tick:            s.Tick,
		Time:            s.Time,
		ChainSpeed:      s.ChainSpeed,
		ChainOmega:      s.ChainOmega,
		FlywheelOmega:   s.FlywheelOmega,
		ClutchEngaged:   s.ClutchEngaged,
		PulsePhase:      s.PulsePhase.String(),
		GeneratorTorque: s.GeneratorTorque,
		GeneratorPower:  s.GeneratorPower,
		CompressorPower: s.CompressorPower,
		NetPower:        s.NetPower,
		TankPressure:    s.TankPressure,
		Injections:      s.Injections,
		AirMassKg:       s.AirMassKg,
		BuoyantWorkJ:    l.BuoyantWorkJ,
		GravityWorkJ:    l.GravityWorkJ,
		DragLossJ:       l.DragLossJ,
		CompressorJ:     l.CompressorEnergyJ,
		GeneratorJ:      l.GeneratorEnergyJ,
		ClutchLossJ:     l.ClutchLossJ,
		FrictionLossJ:   l.FrictionLossJ,
		NetEnergyJ:      l.NetEnergyJ,
		KineticEnergyJ:  l.KineticEnergyJ,
		ResidualJ:       l.ResidualJ,
		Skips:           s.Skips.Total(),
	}
}

func floaterRows(s *dynamo.Snapshot) []FloaterRow {
	rows := make([]FloaterRow, len(s.Floaters))
	for i, f := range s.Floaters {
		rows[i] = FloaterRow{
			Tick:         s.Tick,
			ID:           f.ID,
			Position:     f.Position,
			Height:       f.Height,
			Side:         f.Side.String(),
			State:        f.State.String(),
			FillProgress: f.FillProgress,
			Mass:         f.Mass,
			Buoyant:      f.Forces.Buoyant,
			Weight:       f.Forces.Weight,
			Drag:         f.Forces.Drag,
		}
	}
	return rows
}

// TraceWriter streams snapshots to trace.csv and floaters.csv in dir. It
// implements dynamo.Observer so it can be attached to a live engine; the
// first write error is kept and returned by Close.
type TraceWriter struct {
	traceOut      *os.File
	floaterOut    *os.File
	headerWritten bool
	err           error
}

func NewTraceWriter(dir string) (*TraceWriter, error) {
	tf, err := os.Create(filepath.Join(dir, traceFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", traceFile, err)
	}
	ff, err := os.Create(filepath.Join(dir, floatersFile))
	if err != nil {
		tf.Close()
		return nil, fmt.Errorf("creating %s: %w", floatersFile, err)
	}
	return &TraceWriter{traceOut: tf, floaterOut: ff}, nil
}

func (w *TraceWriter) OnStep(s *dynamo.Snapshot) {
	if w.err != nil {
		return
	}
	rows := []TraceRow{NewTraceRow(s)}
	floaters := floaterRows(s)

	if !w.headerWritten {
		if err := gocsv.Marshal(rows, w.traceOut); err != nil {
			w.err = fmt.Errorf("writing trace: %w", err)
			return
		}
		if err := gocsv.Marshal(floaters, w.floaterOut); err != nil {
			w.err = fmt.Errorf("writing floaters: %w", err)
			return
		}
		w.headerWritten = true
		return
	}
	if err := gocsv.MarshalWithoutHeaders(rows, w.traceOut); err != nil {
		w.err = fmt.Errorf("writing trace: %w", err)
		return
	}
	if err := gocsv.MarshalWithoutHeaders(floaters, w.floaterOut); err != nil {
		w.err = fmt.Errorf("writing floaters: %w", err)
	}
}

func (w *TraceWriter) Close() error {
	e1 := w.traceOut.Close()
	e2 := w.floaterOut.Close()
	if w.err != nil {
		return w.err
	}
	if e1 != nil {
		return e1
	}
	return e2
}
