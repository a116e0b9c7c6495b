package control

import "github.com/san-kum/buoysim/internal/dynamo"

// None keeps the clutch closed and lets the generator follow its load curve.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(obs dynamo.Observation, t float64) dynamo.Command {
	return dynamo.Command{Engage: true, GeneratorTorque: obs.LoadTorque}
}

// Freewheel never engages the clutch. The chain runs unloaded.
type Freewheel struct{}

func NewFreewheel() *Freewheel {
	return &Freewheel{}
}

func (f *Freewheel) Compute(obs dynamo.Observation, t float64) dynamo.Command {
	return dynamo.Command{}
}
