// Package mission judges each simulation tick against a scenario's
// success and failure criteria. The evaluator is a small state
// machine: Running until a terminal Success or Failure verdict, which
// then absorbs every later tick.
package mission

import (
	"math"

	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/scenario"
)

// Outcome is the run state after a tick.
type Outcome int

const (
	Running Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Terminal reports whether the outcome ends the run.
func (o Outcome) Terminal() bool { return o != Running }

// FailReason identifies why a run failed.
type FailReason int

const (
	NoFailure FailReason = iota
	GroundImpact
	OutOfBounds
	Diverged
	ControllerFault
	Timeout
)

func (r FailReason) String() string {
	switch r {
	case NoFailure:
		return ""
	case GroundImpact:
		return "ground_impact"
	case OutOfBounds:
		return "out_of_bounds"
	case Diverged:
		return "diverged"
	case ControllerFault:
		return "controller_fault"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// Verdict is the evaluator's judgment of one tick, carrying the
// scenario's display message once terminal.
type Verdict struct {
	Outcome Outcome
	Reason  FailReason
	Message string
}

// Evaluator consumes vehicle states and produces verdicts. It tracks
// the persistence timer across ticks; once terminal it never changes
// its mind.
type Evaluator struct {
	sc       *scenario.Scenario
	timer    float64
	terminal *Verdict
}

// NewEvaluator builds the judge for one scenario.
func NewEvaluator(sc *scenario.Scenario) *Evaluator {
	return &Evaluator{sc: sc}
}

// Reset clears the persistence timer and any terminal verdict.
func (e *Evaluator) Reset() {
	e.timer = 0
	e.terminal = nil
}

// PersistenceTimer returns how long the success envelope has held
// continuously, in seconds.
func (e *Evaluator) PersistenceTimer() float64 { return e.timer }

// Stabilizing reports whether the envelope currently holds but the
// persistence period has not yet elapsed.
func (e *Evaluator) Stabilizing() bool {
	return e.terminal == nil && e.timer > 0
}

// Fail forces a terminal failure from outside the criteria checks
// (controller faults, divergence, timeout). The message overrides the
// scenario's failure text when non-empty.
func (e *Evaluator) Fail(reason FailReason, msg string) Verdict {
	if e.terminal != nil {
		return *e.terminal
	}
	if msg == "" {
		msg = e.sc.FailureMessage
	}
	v := Verdict{Outcome: Failure, Reason: reason, Message: msg}
	e.terminal = &v
	return v
}

// Eval judges one tick. Checks run in strict order: ground impact,
// out of bounds, then the success envelope with its persistence
// accounting.
func (e *Evaluator) Eval(s lander.VehicleState, dt float64) Verdict {
	if e.terminal != nil {
		return *e.terminal
	}

	if e.sc.Failure.GroundCollision && s.Y <= 0 && e.impactTooHard(s) {
		return e.Fail(GroundImpact, "")
	}

	if b := e.sc.Failure.Bounds; b != nil {
		inside := b.Contains(s.X, s.Y, e.sc.Target)
		if (b.FailWhen == scenario.FailOutside && !inside) ||
			(b.FailWhen == scenario.FailInside && inside) {
			return e.Fail(OutOfBounds, "")
		}
	}

	if e.envelope(s) {
		e.timer += dt
		if e.timer >= e.sc.Success.PersistencePeriod {
			v := Verdict{Outcome: Success, Message: e.sc.SuccessMessage}
			e.terminal = &v
			return v
		}
	} else {
		e.timer = 0
	}

	return Verdict{Outcome: Running}
}

// impactTooHard reports whether contact speed exceeds the success
// velocity bounds. Touching down inside the bounds is not an impact.
func (e *Evaluator) impactTooHard(s lander.VehicleState) bool {
	return math.Abs(s.VX) > e.sc.Success.VXMax || math.Abs(s.VY) > e.sc.Success.VYMax
}

// envelope evaluates the full success envelope: velocity bounds, the
// frame-transformed position box, and attitude within tolerance.
func (e *Evaluator) envelope(s lander.VehicleState) bool {
	succ := e.sc.Success
	if math.Abs(s.VX) > succ.VXMax || math.Abs(s.VY) > succ.VYMax {
		return false
	}
	if !succ.PositionBox.Contains(s.X, s.Y, e.sc.Target) {
		return false
	}
	diff := lander.AngleDiff(s.Rotation, succ.FinalAngle)
	return math.Abs(diff) <= succ.AngleTolerance
}
