package scenario

import (
	"fmt"
	"sort"

	"github.com/san-kum/landsim/internal/lander"
)

// Presets are the built-in training levels, ordered by difficulty.
// Physics constants model a lunar descent stage.
var Presets = map[string]*Scenario{
	"touchdown": {
		Name:          "Touchdown",
		Description:   "Kill your vertical speed before the surface does it for you.",
		ControlScheme: lander.SchemeVertical,
		Physics:       lander.PhysicsParams{Gravity: -1.62, DryMass: 300, MaxThrust: 1389, ISP: 326},
		Initial:       lander.VehicleState{Y: 50, Fuel: 100},
		Success: SuccessCriteria{
			VXMax: 1.0, VYMax: 2.0,
			PositionBox:       Box{XMin: -50, XMax: 50, YMin: 0, YMax: 1.0, Frame: FrameAbsolute},
			AngleTolerance:    0.2,
			PersistencePeriod: 1.0,
		},
		Failure:        FailureCriteria{GroundCollision: true},
		SuccessMessage: "Soft touchdown. The flight computer approves.",
		FailureMessage: "That crater is named after you now.",
		Hints: []string{
			"Gravity pulls at -1.62 m/s²; hover thrust is about 0.35 throttle when full of fuel.",
			"Start braking early. Fuel spent killing speed low is cheaper than dying high.",
		},
	},
	"crossrange": {
		Name:          "Crossrange",
		Description:   "Translate to the pad and land on it, engine gimbal only.",
		ControlScheme: lander.SchemeVectored,
		Physics:       lander.PhysicsParams{Gravity: -1.62, DryMass: 300, MaxThrust: 1800, ISP: 326},
		Initial:       lander.VehicleState{X: -80, Y: 100, Fuel: 150},
		Target:        Point{X: 0, Y: 0},
		Success: SuccessCriteria{
			VXMax: 1.0, VYMax: 2.0,
			PositionBox:       Box{XMin: -5, XMax: 5, YMin: 0, YMax: 1.0, Frame: FrameRelative},
			AngleTolerance:    0.15,
			PersistencePeriod: 1.0,
		},
		Failure: FailureCriteria{
			GroundCollision: true,
			Bounds:          &FailureBounds{Box: Box{XMin: -200, XMax: 200, YMin: -1, YMax: 300, Frame: FrameAbsolute}, FailWhen: FailOutside},
		},
		SuccessMessage: "Dead center. Guidance is go.",
		FailureMessage: "The pad crew would like a word.",
		Hints: []string{
			"Tilt toward the pad, null the horizontal rate, then tilt back before touchdown.",
			"The gimbal clamps at 0.4 rad; plan attitude changes ahead of time.",
		},
	},
	"hover": {
		Name:          "Station Keep",
		Description:   "Hold position inside the box for five full seconds.",
		ControlScheme: lander.SchemeVectored,
		Physics:       lander.PhysicsParams{Gravity: -1.62, DryMass: 300, MaxThrust: 1389, ISP: 326},
		Initial:       lander.VehicleState{Y: 30, Fuel: 200},
		Success: SuccessCriteria{
			VXMax: 0.5, VYMax: 0.5,
			PositionBox:       Box{XMin: -3, XMax: 3, YMin: 28, YMax: 32, Frame: FrameAbsolute},
			AngleTolerance:    0.1,
			PersistencePeriod: 5.0,
		},
		Failure:        FailureCriteria{GroundCollision: true},
		MaxDuration:    90,
		SuccessMessage: "Rock steady.",
		FailureMessage: "Station keeping means keeping the station.",
	},
	"twin": {
		Name:          "Twin Engine",
		Description:   "Differential thrust only: balance two engines to land upright.",
		ControlScheme: lander.SchemeDifferential,
		Physics:       lander.PhysicsParams{Gravity: -1.62, DryMass: 300, MaxThrust: 1600, ISP: 311},
		Initial:       lander.VehicleState{Y: 60, Rotation: 0.2, Fuel: 120},
		Success: SuccessCriteria{
			VXMax: 1.0, VYMax: 2.0,
			PositionBox:       Box{XMin: -30, XMax: 30, YMin: 0, YMax: 1.0, Frame: FrameAbsolute},
			AngleTolerance:    0.1,
			PersistencePeriod: 1.0,
		},
		Failure:        FailureCriteria{GroundCollision: true},
		SuccessMessage: "Both engines, one landing.",
		FailureMessage: "Asymmetric thrust, symmetric wreckage.",
		Hints: []string{
			"Thrust imbalance torques the vehicle: right engine high rolls you left.",
		},
	},
}

// Preset returns a validated copy of a built-in level.
func Preset(name string) (*Scenario, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown level: %s", name)
	}
	sc := *p
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// PresetNames lists the built-in levels in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
