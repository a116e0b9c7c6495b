// Package control provides external clutch and generator controllers.
//
// Controllers implement the [dynamo.Controller] interface. Each tick the
// engine hands them an [dynamo.Observation] and applies the returned
// [dynamo.Command] unless the H3 pulse scheduler is active:
//
//   - [None]: clutch always engaged, generator follows its load curve
//   - [Freewheel]: clutch always open, no generator load
//   - [Manual]: host-set command, for scripted runs
//   - [PID]: generator torque regulating chain speed to a target
//
// # Usage
//
//	pid := control.NewPID(200, 20, 0, 4.0) // Kp, Ki, Kd, target omega
//	eng.SetController(pid)
//
// [PID] implements [dynamo.Configurable] for live tuning and sweeps.
package control
