package control

import "github.com/san-kum/landsim/internal/lander"

// DescentPID regulates vertical speed toward a target descent rate.
// It emits whichever command shape the scheme expects: plain throttle,
// a zero-gimbal thrust vector, or an even differential split. The
// adapter clamps its raw output into the legal throttle range.
type DescentPID struct {
	Kp, Ki, Kd float64
	TargetVY   float64
	Dt         float64
	For        lander.Scheme

	integral float64
	prevErr  float64
	first    bool
}

// NewDescentPID builds a vertical-speed controller for a fixed-step
// loop of the given dt. A TargetVY of -2 commands a steady two meter
// per second descent. Gains are in time units, so the same Ki and Kd
// mean the same thing at any timestep.
func NewDescentPID(kp, ki, kd, targetVY, dt float64, scheme lander.Scheme) *DescentPID {
	return &DescentPID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		TargetVY: targetVY,
		Dt:       dt,
		For:      scheme,
		first:    true,
	}
}

func (p *DescentPID) Command(s lander.Snapshot) (lander.Command, error) {
	err := p.TargetVY - s.VY

	u := p.Kp * err
	if p.first || p.Dt <= 0 {
		p.first = false
	} else {
		p.integral += err * p.Dt
		u += p.Ki*p.integral + p.Kd*(err-p.prevErr)/p.Dt
	}
	p.prevErr = err

	switch p.For {
	case lander.SchemeVectored:
		return lander.ThrustVector{Level: u}, nil
	case lander.SchemeDifferential:
		return lander.Differential{Left: u / 2, Right: u / 2}, nil
	default:
		return lander.Throttle{Level: u}, nil
	}
}

// Reset clears the integral and derivative state for a fresh run.
func (p *DescentPID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
