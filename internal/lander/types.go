package lander

import "math"

// PhysicsParams are the immutable physical constants of a scenario.
type PhysicsParams struct {
	Gravity   float64 `yaml:"gravity"`    // signed vertical acceleration (m/s²)
	DryMass   float64 `yaml:"dry_mass"`   // vehicle mass without fuel (kg)
	MaxThrust float64 `yaml:"max_thrust"` // total thrust at full throttle (N)
	ISP       float64 `yaml:"isp"`        // specific impulse (s)
}

// StandardGravity is the g0 constant used for specific-impulse mass flow.
const StandardGravity = 9.81

// VehicleState is the full planar rigid-body state of the lander.
// Only the physics integrator mutates it.
type VehicleState struct {
	X          float64 `yaml:"x0"`
	Y          float64 `yaml:"y0"`
	VX         float64 `yaml:"vx0"`
	VY         float64 `yaml:"vy0"`
	Rotation   float64 `yaml:"angle"` // radians, 0 = pointing up
	AngularVel float64 `yaml:"angular_vel"`
	Fuel       float64 `yaml:"fuel"` // remaining propellant mass (kg)
}

// IsValid reports whether every component is finite.
func (s VehicleState) IsValid() bool {
	for _, v := range []float64{s.X, s.Y, s.VX, s.VY, s.Rotation, s.AngularVel, s.Fuel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Mass returns the current total mass given the scenario's dry mass.
func (s VehicleState) Mass(p PhysicsParams) float64 {
	return p.DryMass + s.Fuel
}

// Snapshot is the read-only view of VehicleState handed to control
// functions once per tick. The rotation is normalized to (−π, π].
type Snapshot struct {
	X          float64
	Y          float64
	VX         float64
	VY         float64
	Rotation   float64
	AngularVel float64
	Fuel       float64
}

// Snapshot derives the controller-facing view of the state.
func (s VehicleState) Snapshot() Snapshot {
	return Snapshot{
		X:          s.X,
		Y:          s.Y,
		VX:         s.VX,
		VY:         s.VY,
		Rotation:   NormalizeAngle(s.Rotation),
		AngularVel: s.AngularVel,
		Fuel:       s.Fuel,
	}
}

// Scheme selects the shape of the control output a scenario expects.
type Scheme string

const (
	// SchemeVertical expects a single throttle value.
	SchemeVertical Scheme = "vertical"
	// SchemeVectored expects a throttle plus a gimbal deflection.
	SchemeVectored Scheme = "vectored"
	// SchemeDifferential expects independent left/right throttles.
	SchemeDifferential Scheme = "differential"
)

// Valid reports whether the scheme tag is one of the known variants.
func (s Scheme) Valid() bool {
	switch s {
	case SchemeVertical, SchemeVectored, SchemeDifferential:
		return true
	}
	return false
}

// Command is the tagged control variant produced fresh every tick.
// Exactly one concrete type exists per scheme so downstream code can
// switch exhaustively.
type Command interface {
	Scheme() Scheme
}

// Throttle is the vertical-only command: a single bounded throttle.
type Throttle struct {
	Level float64 // [0, 1]
}

func (Throttle) Scheme() Scheme { return SchemeVertical }

// ThrustVector is the gimbaled command: throttle plus deflection.
type ThrustVector struct {
	Level  float64 // [0, 1]
	Gimbal float64 // radians, clamped to the scenario's max deflection
}

func (ThrustVector) Scheme() Scheme { return SchemeVectored }

// Differential carries two independent thruster throttles.
type Differential struct {
	Left  float64 // [0, 1]
	Right float64 // [0, 1]
}

func (Differential) Scheme() Scheme { return SchemeDifferential }
