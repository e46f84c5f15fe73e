// Package metrics provides per-run scalar metrics for the simulation
// loop. Each implements [sim.Metric] and observes every telemetry
// record of a run.
package metrics

import (
	"math"

	"github.com/san-kum/landsim/internal/sim"
)

// FuelUsed reports total propellant burned across the run. It is
// seeded with the scenario's initial load; records are post-step, so
// measuring from the first record would miss the first tick's burn.
type FuelUsed struct {
	initial float64
	last    float64
	seen    bool
}

func NewFuelUsed(initialFuel float64) *FuelUsed {
	return &FuelUsed{initial: initialFuel}
}

func (f *FuelUsed) Name() string { return "fuel_used" }

func (f *FuelUsed) Observe(rec sim.Record) {
	f.last = rec.State.Fuel
	f.seen = true
}

func (f *FuelUsed) Value() float64 {
	if !f.seen {
		return 0
	}
	return f.initial - f.last
}

func (f *FuelUsed) Reset() {
	f.last = 0
	f.seen = false
}

// ControlEffort reports mean actuator throttle over the run, a rough
// smoothness score for landing scripts.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(rec sim.Record) {
	c.sum += math.Abs(rec.Throttle)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() { *c = ControlEffort{} }

// MaxDescentRate reports the fastest downward speed reached.
type MaxDescentRate struct {
	max float64
}

func NewMaxDescentRate() *MaxDescentRate { return &MaxDescentRate{} }

func (m *MaxDescentRate) Name() string { return "max_descent_rate" }

func (m *MaxDescentRate) Observe(rec sim.Record) {
	if rec.State.VY < 0 && -rec.State.VY > m.max {
		m.max = -rec.State.VY
	}
}

func (m *MaxDescentRate) Value() float64 { return m.max }

func (m *MaxDescentRate) Reset() { m.max = 0 }
