// Package control defines the controller capability contract and the
// adapter that stands between an externally supplied control function
// and the physics integrator.
//
// A [Controller] sees only a read-only state snapshot and returns a
// command; the [Adapter] validates the command's shape against the
// scenario's control scheme, clamps every value into its legal range,
// and bounds the controller's execution time. All controller failures
// surface as [*FaultError] and terminate the run as a normal outcome
// rather than crashing the engine.
//
// The built-in controllers ([Zero], [Constant], [DescentPID]) are
// deterministic and double as test doubles for the real script-backed
// controller in package script.
package control
