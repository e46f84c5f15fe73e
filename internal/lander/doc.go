// Package lander defines the core vehicle types shared by the whole
// simulation: physical constants, rigid-body state, the controller-facing
// state snapshot, and the tagged control command variants.
//
// The command variants mirror the control schemes a scenario may declare:
//
//   - [Throttle]: vertical-only, one bounded throttle value
//   - [ThrustVector]: gimbaled main engine, throttle plus deflection
//   - [Differential]: two independent thrusters, torque from imbalance
//
// Downstream packages switch on the concrete command type; an unknown
// type is a scheme mismatch, never silently ignored.
package lander
