// Package sim runs the buoyancy power cycle.
//
// [Engine] owns the floaters, fluid, pneumatics, drivetrain and energy ledger
// and advances them with a fixed-dt tick:
//
//  1. read the fluid with its hypothesis modifiers
//  2. compute per-floater forces at the shared chain speed
//  3. sum the chain force along the loop
//  4. take the clutch and torque command from the H3 scheduler or controller
//  5. integrate the drivetrain
//  6. advance floaters and detect threshold crossings
//  7. vent at the top, inject at the bottom, replenish the tank
//  8. compute generator and compressor power
//  9. update the ledger and check conservation
//  10. publish an immutable [dynamo.Snapshot]
//
// # Usage
//
//	eng, err := sim.New(config.Default(), sim.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	for i := 0; i < 600; i++ {
//		snap, err := eng.Step(0.1)
//		...
//	}
//
// Step, Reset and SetController belong to a single writer goroutine.
// Snapshot and Configure are safe from any goroutine.
package sim
