package control

import "github.com/san-kum/landsim/internal/lander"

// Zero is the ballistic controller: no thrust, ever. It doubles as the
// deterministic stand-in for an absent control script.
type Zero struct {
	For lander.Scheme
}

func (z Zero) Command(lander.Snapshot) (lander.Command, error) {
	switch z.For {
	case lander.SchemeVectored:
		return lander.ThrustVector{}, nil
	case lander.SchemeDifferential:
		return lander.Differential{}, nil
	default:
		return lander.Throttle{}, nil
	}
}

// Constant replays the same command every tick.
type Constant struct {
	Cmd lander.Command
}

func (c Constant) Command(lander.Snapshot) (lander.Command, error) {
	return c.Cmd, nil
}
