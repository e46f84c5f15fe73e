package storage

import (
	"testing"

	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/mission"
	"github.com/san-kum/landsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Records: []sim.Record{
			{Tick: 0, Time: 0.1, State: lander.VehicleState{Y: 49.98, VY: -0.16, Fuel: 100}, Throttle: 0},
			{Tick: 1, Time: 0.2, State: lander.VehicleState{Y: 49.93, VY: -0.32, Fuel: 100}, Throttle: 0.2},
		},
		Final:    mission.Verdict{Outcome: mission.Failure, Reason: mission.GroundImpact, Message: "crashed"},
		Ticks:    2,
		Elapsed:  0.2,
		FuelUsed: 0,
		Metrics:  map[string]float64{"max_descent_rate": 0.32},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	id, err := store.Save("touchdown", "zero", 0.1, sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := store.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Level != "touchdown" || meta.Outcome != "failure" || meta.Reason != "ground_impact" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Ticks != 2 || meta.Metrics["max_descent_rate"] != 0.32 {
		t.Errorf("metadata detail = %+v", meta)
	}

	tel, err := store.LoadTelemetry(id)
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	if len(tel.Altitude) != 2 {
		t.Fatalf("altitude samples = %d, want 2", len(tel.Altitude))
	}
	if tel.Altitude[0] != 49.98 || tel.Throttle[1] != 0.2 {
		t.Errorf("telemetry = %+v", tel)
	}
}

func TestListEmptyDir(t *testing.T) {
	store := New(t.TempDir() + "/missing")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %d, want 0", len(runs))
	}
}

func TestListFindsSavedRuns(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := store.Save("touchdown", "zero", 0.1, sampleResult()); err != nil {
		t.Fatalf("save: %v", err)
	}
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].Level != "touchdown" {
		t.Errorf("level = %q", runs[0].Level)
	}
}
