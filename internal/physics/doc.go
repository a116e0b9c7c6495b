// Package physics provides the physical components of the buoyancy power cycle.
//
// Each component owns its state and exposes pure helpers where the engine
// needs side-effect-free evaluation:
//
//   - [Loop]: chain loop geometry, sides, heights and the surface ramp
//   - [Fluid]: ambient fluid with the H1 descending-side modifiers and H2 boost
//   - [Floater]: per-unit state machine and force computation
//   - [Pneumatics]: compressor tank, injection work and venting
//   - [Generator]: piecewise load curve
//   - [Drivetrain]: sprocket, one-way clutch and flywheel integration
//   - [PulseScheduler]: H3 pulse-and-coast timer
//
// # Sign Convention
//
// Chain force and chain speed are positive along the loop direction: upward on
// the ascending run, downward on the descending run. Buoyancy and weight are
// vertical magnitudes; [dynamo.Forces.Along] projects them onto the loop.
package physics
