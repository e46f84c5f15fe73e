package physics

import (
	"math"

	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/scenario"
)

// Integrator advances the vehicle state one fixed timestep at a time.
// It owns the actuator state (current throttle and gimbal positions),
// which slews toward the commanded values at the scenario's rate
// limits; the actuators are part of the plant, not of VehicleState.
type Integrator struct {
	params lander.PhysicsParams
	limits scenario.Limits

	// Ground-contact model: only active when the scenario declares a
	// collidable surface. The velocity bounds are the scenario's
	// success bounds; contact within them is a touchdown, not a crash.
	ground bool
	vxMax  float64
	vyMax  float64

	throttle float64 // main engine, or left thruster for differential
	right    float64 // right thruster, differential only
	gimbal   float64
}

// New builds an integrator for one scenario with actuators at rest.
func New(sc *scenario.Scenario) *Integrator {
	return &Integrator{
		params: sc.Physics,
		limits: sc.Limits,
		ground: sc.Failure.GroundCollision,
		vxMax:  sc.Success.VXMax,
		vyMax:  sc.Success.VYMax,
	}
}

// Reset returns the actuators to their initial rest position.
func (in *Integrator) Reset() {
	in.throttle = 0
	in.right = 0
	in.gimbal = 0
}

// Throttle returns the current actuator throttle (total, normalized).
func (in *Integrator) Throttle() float64 {
	return in.throttle
}

// Gimbal returns the current gimbal deflection in radians.
func (in *Integrator) Gimbal() float64 {
	return in.gimbal
}

// Step integrates one timestep under the given command using
// semi-implicit Euler: velocity is updated from acceleration first,
// then position from the new velocity. The scheme stays stable under
// the bang-bang throttle transitions typical of landing scripts.
//
// Fuel accounting is deliberately simple: once fuel is exhausted at
// the start of a step, thrust is zero for the whole step. Thrust is
// not prorated for fuel that runs out mid-step.
func (in *Integrator) Step(s lander.VehicleState, cmd lander.Command, dt float64) (lander.VehicleState, error) {
	in.slew(cmd, dt)

	if s.Fuel <= 0 {
		in.throttle = 0
		in.right = 0
		in.gimbal = 0
	}

	rot := lander.NormalizeAngle(s.Rotation)
	var fx, fy, torque, thrust float64

	switch cmd.(type) {
	case lander.Throttle, lander.ThrustVector:
		thrust = in.throttle * in.params.MaxThrust
		// Rotation 0 points up; gimbal deflects the plume off-axis.
		dir := -rot - in.gimbal
		fx = math.Sin(dir) * thrust
		fy = math.Cos(dir) * thrust
		torque = -math.Sin(in.gimbal) * thrust * in.limits.LeverArm
	case lander.Differential:
		per := in.params.MaxThrust / 2
		left := in.throttle * per
		right := in.right * per
		thrust = left + right
		fx = -thrust * math.Sin(rot)
		fy = thrust * math.Cos(rot)
		torque = (right - left) * in.limits.LeverArm
	default:
		return s, lander.ErrSchemeMismatch
	}

	torque -= in.limits.AngularDamping * s.AngularVel

	mass := s.Mass(in.params)
	ax := fx / mass
	ay := fy/mass + in.params.Gravity
	alpha := torque / in.limits.MomentOfInertia

	next := s
	next.VX = s.VX + ax*dt
	next.VY = s.VY + ay*dt
	next.X = s.X + next.VX*dt
	next.Y = s.Y + next.VY*dt
	next.AngularVel = s.AngularVel + alpha*dt
	next.Rotation = lander.NormalizeAngle(rot + next.AngularVel*dt)

	flow := thrust / (in.params.ISP * lander.StandardGravity)
	next.Fuel = math.Max(0, s.Fuel-flow*dt)

	// Ground contact. A touchdown within the success velocity bounds
	// settles: the vehicle rests on the surface with velocities and
	// actuators zeroed, so the persistence timer can run while parked
	// on the pad. Harder contact passes through untouched for the
	// mission evaluator to judge as an impact.
	if in.ground && next.Y <= 0 &&
		math.Abs(next.VX) <= in.vxMax && math.Abs(next.VY) <= in.vyMax {
		next.Y = 0
		next.VX = 0
		next.VY = 0
		next.AngularVel = 0
		in.throttle = 0
		in.right = 0
		in.gimbal = 0
	}

	if !next.IsValid() {
		return s, lander.ErrNonFinite
	}
	return next, nil
}

// slew moves the actuators toward the commanded values, bounded by the
// scenario's slew rates per second.
func (in *Integrator) slew(cmd lander.Command, dt float64) {
	switch c := cmd.(type) {
	case lander.Throttle:
		in.throttle = approach(in.throttle, c.Level, in.limits.ThrustRate*dt)
		in.gimbal = approach(in.gimbal, 0, in.limits.GimbalRate*dt)
	case lander.ThrustVector:
		in.throttle = approach(in.throttle, c.Level, in.limits.ThrustRate*dt)
		in.gimbal = approach(in.gimbal, c.Gimbal, in.limits.GimbalRate*dt)
	case lander.Differential:
		in.throttle = approach(in.throttle, c.Left, in.limits.ThrustRate*dt)
		in.right = approach(in.right, c.Right, in.limits.ThrustRate*dt)
	}
}

func approach(current, target, maxDelta float64) float64 {
	if target > current {
		return math.Min(current+maxDelta, target)
	}
	return math.Max(current-maxDelta, target)
}
