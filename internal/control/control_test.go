package control

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/scenario"
)

func adapterScenario(scheme lander.Scheme) *scenario.Scenario {
	return &scenario.Scenario{
		ControlScheme: scheme,
		Limits:        scenario.Limits{MaxGimbal: 0.4},
	}
}

type funcController func(lander.Snapshot) (lander.Command, error)

func (f funcController) Command(s lander.Snapshot) (lander.Command, error) { return f(s) }

func TestAdapterClampsThrottle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"over", 3.5, 1},
		{"under", -2, 0},
		{"in range", 0.7, 0.7},
	}

	a := NewAdapter(Constant{Cmd: lander.Throttle{}}, adapterScenario(lander.SchemeVertical), 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.ctrl = Constant{Cmd: lander.Throttle{Level: tt.in}}
			cmd, err := a.Command(lander.Snapshot{})
			if err != nil {
				t.Fatalf("command: %v", err)
			}
			if got := cmd.(lander.Throttle).Level; got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdapterClampsGimbal(t *testing.T) {
	a := NewAdapter(Constant{Cmd: lander.ThrustVector{Level: 0.5, Gimbal: 2.0}},
		adapterScenario(lander.SchemeVectored), 0)
	cmd, err := a.Command(lander.Snapshot{})
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	if got := cmd.(lander.ThrustVector).Gimbal; got != 0.4 {
		t.Errorf("gimbal = %v, want clamped 0.4", got)
	}

	a.ctrl = Constant{Cmd: lander.ThrustVector{Level: 0.5, Gimbal: -2.0}}
	cmd, _ = a.Command(lander.Snapshot{})
	if got := cmd.(lander.ThrustVector).Gimbal; got != -0.4 {
		t.Errorf("gimbal = %v, want clamped -0.4", got)
	}
}

func TestAdapterRejectsSchemeMismatch(t *testing.T) {
	a := NewAdapter(Constant{Cmd: lander.Throttle{Level: 1}},
		adapterScenario(lander.SchemeVectored), 0)
	_, err := a.Command(lander.Snapshot{})
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected FaultError, got %v", err)
	}
}

func TestAdapterRejectsNonFiniteOutput(t *testing.T) {
	cmds := []lander.Command{
		lander.Throttle{Level: math.NaN()},
		lander.Differential{Left: math.Inf(1), Right: 0},
	}
	for _, cmd := range cmds {
		a := NewAdapter(Constant{Cmd: cmd}, adapterScenario(cmd.Scheme()), 0)
		if _, err := a.Command(lander.Snapshot{}); err == nil {
			t.Errorf("%T with non-finite fields accepted", cmd)
		}
	}
}

func TestAdapterWrapsControllerError(t *testing.T) {
	boom := funcController(func(lander.Snapshot) (lander.Command, error) {
		return nil, errors.New("divide by zero at line 3")
	})
	a := NewAdapter(boom, adapterScenario(lander.SchemeVertical), 0)
	_, err := a.Command(lander.Snapshot{})
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected FaultError, got %v", err)
	}
	if fault.Msg == "" {
		t.Error("fault message dropped")
	}
}

func TestAdapterNilCommandIsFault(t *testing.T) {
	a := NewAdapter(funcController(func(lander.Snapshot) (lander.Command, error) {
		return nil, nil
	}), adapterScenario(lander.SchemeVertical), 0)
	if _, err := a.Command(lander.Snapshot{}); err == nil {
		t.Error("nil command accepted")
	}
}

func TestAdapterBudget(t *testing.T) {
	stall := funcController(func(lander.Snapshot) (lander.Command, error) {
		time.Sleep(time.Second)
		return lander.Throttle{}, nil
	})
	a := NewAdapter(stall, adapterScenario(lander.SchemeVertical), 5*time.Millisecond)
	_, err := a.Command(lander.Snapshot{})
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected budget FaultError, got %v", err)
	}
}

func TestZeroControllerShapes(t *testing.T) {
	tests := []struct {
		scheme lander.Scheme
	}{
		{lander.SchemeVertical},
		{lander.SchemeVectored},
		{lander.SchemeDifferential},
	}
	for _, tt := range tests {
		cmd, err := Zero{For: tt.scheme}.Command(lander.Snapshot{})
		if err != nil {
			t.Fatalf("zero %s: %v", tt.scheme, err)
		}
		if cmd.Scheme() != tt.scheme {
			t.Errorf("zero %s produced %s command", tt.scheme, cmd.Scheme())
		}
	}
}

func TestDescentPIDThrottlesUpWhenFalling(t *testing.T) {
	pid := NewDescentPID(0.5, 0, 0, -2, 0.1, lander.SchemeVertical)
	cmd, err := pid.Command(lander.Snapshot{VY: -10})
	if err != nil {
		t.Fatalf("pid: %v", err)
	}
	// Falling faster than target: positive correction.
	if cmd.(lander.Throttle).Level <= 0 {
		t.Errorf("level = %v, want > 0", cmd.(lander.Throttle).Level)
	}

	pid.Reset()
	cmd, _ = pid.Command(lander.Snapshot{VY: 0})
	// Descending slower than target: correction pushes negative.
	if cmd.(lander.Throttle).Level >= 0 {
		t.Errorf("level = %v, want < 0 before clamping", cmd.(lander.Throttle).Level)
	}
}

func TestDescentPIDGainsAreTimeScaled(t *testing.T) {
	// Integral action accumulates err*dt, so a constant error held for
	// the same simulated time yields the same output at any step size.
	// The first tick contributes proportional action only.
	integAfter := func(dt float64, steps int) float64 {
		pid := NewDescentPID(0, 1.0, 0, -2, dt, lander.SchemeVertical)
		var last float64
		for i := 0; i < steps; i++ {
			cmd, _ := pid.Command(lander.Snapshot{VY: -4}) // err = +2
			last = cmd.(lander.Throttle).Level
		}
		return last
	}
	coarse := integAfter(0.25, 9) // 2.0s of integration after tick one
	fine := integAfter(0.125, 17)
	if coarse != 4.0 || fine != 4.0 {
		t.Errorf("integral action = %v (dt=0.25), %v (dt=0.125), want 4.0 for both", coarse, fine)
	}

	// Derivative action is the error rate, (err-prev)/dt.
	pid := NewDescentPID(0, 0, 1.0, -2, 0.25, lander.SchemeVertical)
	pid.Command(lander.Snapshot{VY: -2})           // err 0
	cmd, _ := pid.Command(lander.Snapshot{VY: -3}) // err 1
	if got := cmd.(lander.Throttle).Level; got != 4.0 {
		t.Errorf("derivative action = %v, want 1/0.25 = 4.0", got)
	}
}

func TestDescentPIDDeterministic(t *testing.T) {
	run := func() []float64 {
		pid := NewDescentPID(0.4, 0.02, 0.1, -2, 0.1, lander.SchemeVertical)
		out := make([]float64, 0, 50)
		for i := 0; i < 50; i++ {
			cmd, _ := pid.Command(lander.Snapshot{VY: -5 + float64(i)*0.1})
			out = append(out, cmd.(lander.Throttle).Level)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pid output diverged at tick %d: %v vs %v", i, a[i], b[i])
		}
	}
}
