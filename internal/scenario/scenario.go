package scenario

import (
	"fmt"
	"os"

	"github.com/san-kum/landsim/internal/lander"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a level file omits the actuator limits block.
// They match the trainer's reference vehicle.
const (
	DefaultMaxGimbal       = 0.4 // radians (~23 degrees)
	DefaultThrustRate      = 2.0 // throttle fraction per second
	DefaultGimbalRate      = 1.0 // radians per second
	DefaultMomentOfInertia = 100.0
	DefaultAngularDamping  = 0.0
	DefaultLeverArm        = 1.5 // thrust application offset from center of mass (m)
	DefaultMaxDuration     = 120.0
)

// Frame selects the coordinate frame a box test runs in.
type Frame string

const (
	// FrameAbsolute compares against world coordinates.
	FrameAbsolute Frame = "absolute"
	// FrameRelative subtracts the scenario target point first.
	FrameRelative Frame = "relative"
)

// BoundsRule selects which side of a failure box is fatal.
type BoundsRule string

const (
	// FailOutside declares failure when the vehicle leaves the box.
	FailOutside BoundsRule = "outside"
	// FailInside declares failure when the vehicle enters the box.
	FailInside BoundsRule = "inside"
)

// Point is a 2-D world coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Box is an axis-aligned region tagged with a reference frame.
type Box struct {
	XMin  float64 `yaml:"x_min"`
	XMax  float64 `yaml:"x_max"`
	YMin  float64 `yaml:"y_min"`
	YMax  float64 `yaml:"y_max"`
	Frame Frame   `yaml:"frame"`
}

// Contains reports whether (x, y) lies inside the box after the frame
// transform. Relative boxes subtract the origin point before the test.
func (b Box) Contains(x, y float64, origin Point) bool {
	if b.Frame == FrameRelative {
		x -= origin.X
		y -= origin.Y
	}
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// SuccessCriteria is the envelope a run must hold continuously for
// PersistencePeriod seconds before it is judged successful.
type SuccessCriteria struct {
	VXMax             float64 `yaml:"vx_max"`
	VYMax             float64 `yaml:"vy_max"`
	PositionBox       Box     `yaml:"position_box"`
	FinalAngle        float64 `yaml:"final_angle"`
	AngleTolerance    float64 `yaml:"angle_tolerance"`
	PersistencePeriod float64 `yaml:"persistence_period"`
}

// FailureBounds is an optional region whose violation ends the run.
type FailureBounds struct {
	Box      `yaml:",inline"`
	FailWhen BoundsRule `yaml:"fail_when"`
}

// FailureCriteria enumerates the instant-failure rules of a level.
type FailureCriteria struct {
	GroundCollision bool           `yaml:"ground_collision"`
	Bounds          *FailureBounds `yaml:"bounds,omitempty"`
}

// Limits describes the actuator model: clamp ranges, slew rates, and
// the rotational constants of the airframe.
type Limits struct {
	MaxGimbal       float64 `yaml:"max_gimbal"`
	ThrustRate      float64 `yaml:"thrust_rate"`
	GimbalRate      float64 `yaml:"gimbal_rate"`
	MomentOfInertia float64 `yaml:"moment_of_inertia"`
	AngularDamping  float64 `yaml:"angular_damping"`
	LeverArm        float64 `yaml:"lever_arm"`
}

// Scenario is one fully validated level. Immutable once loaded.
type Scenario struct {
	Name           string               `yaml:"name"`
	Description    string               `yaml:"description"`
	ControlScheme  lander.Scheme        `yaml:"control_scheme"`
	Physics        lander.PhysicsParams `yaml:"physics"`
	Initial        lander.VehicleState  `yaml:"initial"`
	Target         Point                `yaml:"target"`
	Success        SuccessCriteria      `yaml:"success"`
	Failure        FailureCriteria      `yaml:"failure"`
	Limits         Limits               `yaml:"limits"`
	MaxDuration    float64              `yaml:"max_duration"`
	SuccessMessage string               `yaml:"success_message"`
	FailureMessage string               `yaml:"failure_message"`
	Hints          []string             `yaml:"hints,omitempty"`
}

// Load reads, parses, and validates a level file. A scenario that fails
// validation never reaches the simulation loop.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a level document and validates it.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &MalformedError{Err: err}
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Save writes the scenario back out as YAML. Save followed by Load
// yields a field-for-field identical Scenario.
func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (sc *Scenario) applyDefaults() {
	if sc.Limits.MaxGimbal == 0 {
		sc.Limits.MaxGimbal = DefaultMaxGimbal
	}
	if sc.Limits.ThrustRate == 0 {
		sc.Limits.ThrustRate = DefaultThrustRate
	}
	if sc.Limits.GimbalRate == 0 {
		sc.Limits.GimbalRate = DefaultGimbalRate
	}
	if sc.Limits.MomentOfInertia == 0 {
		sc.Limits.MomentOfInertia = DefaultMomentOfInertia
	}
	if sc.Limits.LeverArm == 0 {
		sc.Limits.LeverArm = DefaultLeverArm
	}
	if sc.MaxDuration == 0 {
		sc.MaxDuration = DefaultMaxDuration
	}
	if sc.Success.PositionBox.Frame == "" {
		sc.Success.PositionBox.Frame = FrameAbsolute
	}
	if sc.Failure.Bounds != nil {
		if sc.Failure.Bounds.Frame == "" {
			sc.Failure.Bounds.Frame = FrameAbsolute
		}
		if sc.Failure.Bounds.FailWhen == "" {
			sc.Failure.Bounds.FailWhen = FailOutside
		}
	}
}

// Validate checks every semantic constraint. The first violated field
// is reported; structural problems are caught earlier by Parse.
func (sc *Scenario) Validate() error {
	if !sc.ControlScheme.Valid() {
		return invalid("control_scheme", fmt.Sprintf("unknown scheme %q", sc.ControlScheme))
	}
	if sc.Physics.MaxThrust <= 0 {
		return invalid("physics.max_thrust", "must be > 0")
	}
	if sc.Physics.ISP <= 0 {
		return invalid("physics.isp", "must be > 0")
	}
	if sc.Physics.DryMass <= 0 {
		return invalid("physics.dry_mass", "must be > 0")
	}
	if sc.Initial.Fuel < 0 {
		return invalid("initial.fuel", "must be >= 0")
	}
	if sc.Success.PersistencePeriod < 0 {
		return invalid("success.persistence_period", "must be >= 0")
	}
	if sc.Success.VXMax < 0 {
		return invalid("success.vx_max", "must be >= 0")
	}
	if sc.Success.VYMax < 0 {
		return invalid("success.vy_max", "must be >= 0")
	}
	if sc.Success.AngleTolerance < 0 {
		return invalid("success.angle_tolerance", "must be >= 0")
	}
	if err := validBox(sc.Success.PositionBox, "success.position_box"); err != nil {
		return err
	}
	if sc.Failure.Bounds != nil {
		if err := validBox(sc.Failure.Bounds.Box, "failure.bounds"); err != nil {
			return err
		}
		switch sc.Failure.Bounds.FailWhen {
		case FailOutside, FailInside:
		default:
			return invalid("failure.bounds.fail_when", fmt.Sprintf("unknown rule %q", sc.Failure.Bounds.FailWhen))
		}
	}
	if sc.Limits.MaxGimbal < 0 {
		return invalid("limits.max_gimbal", "must be >= 0")
	}
	if sc.Limits.MomentOfInertia <= 0 {
		return invalid("limits.moment_of_inertia", "must be > 0")
	}
	if sc.MaxDuration <= 0 {
		return invalid("max_duration", "must be > 0")
	}
	return nil
}

func validBox(b Box, field string) error {
	if b.XMin > b.XMax {
		return invalid(field+".x_min", "must be <= x_max")
	}
	if b.YMin > b.YMax {
		return invalid(field+".y_min", "must be <= y_max")
	}
	switch b.Frame {
	case FrameAbsolute, FrameRelative:
		return nil
	}
	return invalid(field+".frame", fmt.Sprintf("unknown frame %q", b.Frame))
}
