package physics

import (
	"github.com/san-kum/buoysim/internal/config"
)

// ChainInertia is the chain-side moment of inertia reflected to the sprocket.
// Each floater counts at the midpoint of its mass range so the value stays
// constant while floaters fill and vent.
func ChainInertia(floaters []Floater, radius float64) float64 {
	var m float64
	for i := range floaters {
		m += (floaters[i].MassEmpty + floaters[i].MassFull) / 2
	}
	return m * radius * radius
}

// Drivetrain couples the chain sprocket to a flywheel and generator through
// a clutch.
type Drivetrain struct {
	Radius          float64
	FlywheelInertia float64
	Friction        float64 // flywheel viscous friction, N m s/rad
	OneWay          bool

	Engaged       bool
	ChainOmega    float64
	FlywheelOmega float64
}

func NewDrivetrain(c config.DrivetrainConfig) *Drivetrain {
	return &Drivetrain{
		Radius:          c.SprocketRadius,
		FlywheelInertia: c.FlywheelInertia,
		Friction:        c.FlywheelFriction,
		OneWay:          c.OneWayClutch,
	}
}

// Retune updates friction and clutch mode, keeping the shaft speeds.
func (d *Drivetrain) Retune(c config.DrivetrainConfig) {
	d.Friction = c.FlywheelFriction
	d.OneWay = c.OneWayClutch
}

// ChainSpeed is the linear chain speed along the loop.
func (d *Drivetrain) ChainSpeed() float64 {
	return d.ChainOmega * d.Radius
}

// Engage locks the chain to the flywheel, merging their speeds so that
// angular momentum is conserved. It returns the kinetic energy dissipated in
// the clutch. A one-way clutch refuses to engage while the chain runs slower
// than the flywheel; ok is false in that case and nothing changes.
func (d *Drivetrain) Engage(chainInertia float64) (loss float64, ok bool) {
	if d.Engaged {
		return 0, true
	}
	if d.OneWay && d.ChainOmega < d.FlywheelOmega {
		return 0, false
	}
	before := d.KineticEnergy(chainInertia)
	total := chainInertia + d.FlywheelInertia
	omega := (chainInertia*d.ChainOmega + d.FlywheelInertia*d.FlywheelOmega) / total
	d.ChainOmega = omega
	d.FlywheelOmega = omega
	d.Engaged = true
	return before - d.KineticEnergy(chainInertia), true
}

// Disengage releases the clutch. The flywheel keeps the chain's speed and
// evolves on its own from then on.
func (d *Drivetrain) Disengage() {
	if !d.Engaged {
		return
	}
	d.FlywheelOmega = d.ChainOmega
	d.Engaged = false
}

// StepResult carries what the energy ledger needs from one integration step.
type StepResult struct {
	OmegaMid        float64 // mean chain speed over the step, rad/s
	GeneratorTorque float64 // torque actually applied
	GeneratorEnergy float64
	FrictionEnergy  float64
}

// Step integrates the shaft speeds over dt under the net chain force. Friction
// torque is taken at the start of the step and the energies are evaluated at
// the mid-step speed, so the work terms match the kinetic energy change
// exactly. The generator brakes only a forward-turning shaft.
func (d *Drivetrain) Step(netForce, chainInertia, generatorTorque, dt float64) StepResult {
	drive := netForce * d.Radius

	if d.Engaged {
		w0 := d.ChainOmega
		tau := generatorTorque
		if w0 <= 0 {
			tau = 0
		}
		fric := d.Friction * w0
		alpha := (drive - tau - fric) / (chainInertia + d.FlywheelInertia)
		w1 := w0 + alpha*dt
		mid := (w0 + w1) / 2
		d.ChainOmega = w1
		d.FlywheelOmega = w1
		return StepResult{
			OmegaMid:        mid,
			GeneratorTorque: tau,
			GeneratorEnergy: tau * mid * dt,
			FrictionEnergy:  fric * mid * dt,
		}
	}

	w0 := d.ChainOmega
	w1 := w0 + drive/chainInertia*dt
	d.ChainOmega = w1

	f0 := d.FlywheelOmega
	fric := d.Friction * f0
	f1 := f0 - fric/d.FlywheelInertia*dt
	d.FlywheelOmega = f1

	return StepResult{
		OmegaMid:       (w0 + w1) / 2,
		FrictionEnergy: fric * (f0 + f1) / 2 * dt,
	}
}

// KineticEnergy is the rotational energy of the chain and flywheel.
func (d *Drivetrain) KineticEnergy(chainInertia float64) float64 {
	return 0.5*chainInertia*d.ChainOmega*d.ChainOmega +
		0.5*d.FlywheelInertia*d.FlywheelOmega*d.FlywheelOmega
}

// Reset stops both shafts and opens the clutch.
func (d *Drivetrain) Reset() {
	d.Engaged = false
	d.ChainOmega = 0
	d.FlywheelOmega = 0
}
