package control

import (
	"math"
	"time"

	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/scenario"
)

// Controller computes one control command per tick from a read-only
// state snapshot. Implementations must be deterministic for telemetry
// reproducibility; any returned error ends the run as a controller
// fault, not an engine crash.
type Controller interface {
	Command(s lander.Snapshot) (lander.Command, error)
}

// DefaultBudget bounds how long a single controller invocation may run.
const DefaultBudget = 50 * time.Millisecond

// Adapter wraps an externally supplied controller behind the fixed
// capability contract: it validates the command shape against the
// scenario's scheme, clamps all values into their legal ranges, and
// enforces the per-tick execution budget. Nothing unclamped or
// malformed ever reaches the integrator.
type Adapter struct {
	ctrl      Controller
	scheme    lander.Scheme
	maxGimbal float64
	budget    time.Duration
}

// NewAdapter builds the adapter for one scenario. A budget of zero
// disables the watchdog (used for trusted built-in controllers).
func NewAdapter(ctrl Controller, sc *scenario.Scenario, budget time.Duration) *Adapter {
	return &Adapter{
		ctrl:      ctrl,
		scheme:    sc.ControlScheme,
		maxGimbal: sc.Limits.MaxGimbal,
		budget:    budget,
	}
}

// Command invokes the wrapped controller and returns a validated,
// clamped command. Every failure mode maps to a *FaultError.
func (a *Adapter) Command(s lander.Snapshot) (lander.Command, error) {
	cmd, err := a.invoke(s)
	if err != nil {
		if _, ok := err.(*FaultError); ok {
			return nil, err
		}
		return nil, faultf("controller error: %v", err)
	}
	if cmd == nil {
		return nil, faultf("controller returned no command")
	}
	if cmd.Scheme() != a.scheme {
		return nil, faultf("command shape %s does not match scheme %s", cmd.Scheme(), a.scheme)
	}
	return a.clamp(cmd)
}

// Reset clears accumulated state in the wrapped controller, when it
// carries any, so a run can restart from the same initial conditions.
func (a *Adapter) Reset() {
	if r, ok := a.ctrl.(interface{ Reset() }); ok {
		r.Reset()
	}
}

type invokeResult struct {
	cmd lander.Command
	err error
}

func (a *Adapter) invoke(s lander.Snapshot) (lander.Command, error) {
	if a.budget <= 0 {
		return a.ctrl.Command(s)
	}

	// The call runs on its own goroutine so a runaway controller can
	// be abandoned at the deadline. The run terminates on fault, so
	// the abandoned goroutine never races a later invocation.
	done := make(chan invokeResult, 1)
	go func() {
		cmd, err := a.ctrl.Command(s)
		done <- invokeResult{cmd, err}
	}()

	select {
	case r := <-done:
		return r.cmd, r.err
	case <-time.After(a.budget):
		return nil, faultf("controller exceeded %v execution budget", a.budget)
	}
}

func (a *Adapter) clamp(cmd lander.Command) (lander.Command, error) {
	switch c := cmd.(type) {
	case lander.Throttle:
		if !finite(c.Level) {
			return nil, faultf("throttle is not a finite number")
		}
		c.Level = clampRange(c.Level, 0, 1)
		return c, nil
	case lander.ThrustVector:
		if !finite(c.Level) || !finite(c.Gimbal) {
			return nil, faultf("thrust vector is not finite")
		}
		c.Level = clampRange(c.Level, 0, 1)
		c.Gimbal = clampRange(c.Gimbal, -a.maxGimbal, a.maxGimbal)
		return c, nil
	case lander.Differential:
		if !finite(c.Left) || !finite(c.Right) {
			return nil, faultf("differential throttles are not finite")
		}
		c.Left = clampRange(c.Left, 0, 1)
		c.Right = clampRange(c.Right, 0, 1)
		return c, nil
	}
	return nil, faultf("unknown command type %T", cmd)
}

func clampRange(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
