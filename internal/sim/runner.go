package sim

import (
	"context"
	"errors"

	"github.com/san-kum/landsim/internal/control"
	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/mission"
	"github.com/san-kum/landsim/internal/physics"
	"github.com/san-kum/landsim/internal/scenario"
)

// Record is one tick of telemetry: the post-step vehicle state, the
// clamped command that produced it, and the verdict so far.
type Record struct {
	Tick     int
	Time     float64
	State    lander.VehicleState
	Command  lander.Command
	Throttle float64 // actuator throttle after slew
	Gimbal   float64 // actuator gimbal after slew
	Verdict  mission.Verdict
}

// Metric accumulates a scalar over a run, observing every tick.
type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// Observer is notified after every tick. Observers must not mutate
// anything the loop depends on.
type Observer interface {
	OnTick(rec Record)
}

// Config holds the per-run loop parameters.
type Config struct {
	Dt          float64
	MaxDuration float64 // overrides the scenario's max duration when > 0
}

// Result is the complete outcome of one run.
type Result struct {
	Records  []Record
	Final    mission.Verdict
	Ticks    int
	Elapsed  float64 // simulated seconds
	FuelUsed float64
	Metrics  map[string]float64
}

// Runner composes the controller adapter, physics integrator, and
// mission evaluator into the fixed-timestep loop.
type Runner struct {
	sc        *scenario.Scenario
	adapter   *control.Adapter
	metrics   []Metric
	observers []Observer
}

// NewRunner wires a run for one scenario and one (already adapted)
// controller.
func NewRunner(sc *scenario.Scenario, adapter *control.Adapter) *Runner {
	return &Runner{sc: sc, adapter: adapter}
}

// AddMetric registers a per-run metric.
func (r *Runner) AddMetric(m Metric) { r.metrics = append(r.metrics, m) }

// AddObserver registers a per-tick observer.
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run executes the loop to a terminal verdict. Ticks are never
// skipped or batched: identical scenario plus deterministic controller
// yields bit-for-bit identical telemetry. Cancelling the context
// aborts at the next tick boundary and returns the context error with
// no terminal outcome recorded.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, errors.New("sim: dt must be positive")
	}
	maxDuration := r.sc.MaxDuration
	if cfg.MaxDuration > 0 {
		maxDuration = cfg.MaxDuration
	}

	integ := physics.New(r.sc)
	eval := mission.NewEvaluator(r.sc)
	for _, m := range r.metrics {
		m.Reset()
	}

	state := r.sc.Initial
	steps := int(maxDuration/cfg.Dt) + 1
	result := &Result{Records: make([]Record, 0, steps)}

	t := 0.0
	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if t > maxDuration {
			result.Final = eval.Fail(mission.Timeout, "")
			result.Records = append(result.Records, Record{
				Tick: tick, Time: t, State: state, Verdict: result.Final,
			})
			break
		}

		cmd, err := r.adapter.Command(state.Snapshot())
		if err != nil {
			result.Final = eval.Fail(mission.ControllerFault, err.Error())
			result.Records = append(result.Records, Record{
				Tick: tick, Time: t, State: state, Verdict: result.Final,
			})
			break
		}

		next, err := integ.Step(state, cmd, cfg.Dt)
		if err != nil {
			result.Final = eval.Fail(mission.Diverged, err.Error())
			result.Records = append(result.Records, Record{
				Tick: tick, Time: t, State: state, Command: cmd, Verdict: result.Final,
			})
			break
		}
		state = next
		t += cfg.Dt

		verdict := eval.Eval(state, cfg.Dt)
		rec := Record{
			Tick:     tick,
			Time:     t,
			State:    state,
			Command:  cmd,
			Throttle: integ.Throttle(),
			Gimbal:   integ.Gimbal(),
			Verdict:  verdict,
		}
		result.Records = append(result.Records, rec)
		for _, m := range r.metrics {
			m.Observe(rec)
		}
		for _, o := range r.observers {
			o.OnTick(rec)
		}

		if verdict.Outcome.Terminal() {
			result.Final = verdict
			break
		}
	}

	result.Ticks = len(result.Records)
	result.Elapsed = t
	result.FuelUsed = r.sc.Initial.Fuel - state.Fuel
	result.Metrics = make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
