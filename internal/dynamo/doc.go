// Package dynamo provides the shared vocabulary of the buoyancy engine.
//
// The package defines the types exchanged between the physics components,
// the engine and the host layer:
//
//   - [FloaterState], [Side], [PulsePhase]: per-floater and drivetrain enums
//   - [Forces]: the force triple computed for a floater each tick
//   - [Snapshot]: the immutable per-tick output of the engine
//   - [Controller]: external clutch and generator command source
//   - [Metric], [Observer]: snapshot consumers
//   - [ConfigError], [SimulationError]: structured failures
//
// # Example
//
//	eng, _ := sim.New(config.Default())
//	for i := 0; i < 600; i++ {
//	    snap, err := eng.Step(0.1)
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(snap.NetPower)
//	}
//
// # Thread Safety
//
// A [Snapshot] is never modified after it is emitted and may be shared
// between goroutines freely.
package dynamo
