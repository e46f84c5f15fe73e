package lander

import "errors"

// Domain errors shared across the simulation packages.
var (
	// ErrNonFinite indicates the integrator produced NaN or Inf.
	ErrNonFinite = errors.New("lander: state diverged (NaN or Inf)")

	// ErrSchemeMismatch indicates a command whose shape does not match
	// the scenario's control scheme.
	ErrSchemeMismatch = errors.New("lander: command shape does not match control scheme")
)
