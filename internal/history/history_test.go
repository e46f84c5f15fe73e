package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "attempts.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	attempts := []Attempt{
		{Level: "touchdown", Outcome: "failure", Reason: "ground_impact", FlightTime: 7.9, FuelUsed: 0},
		{Level: "touchdown", Outcome: "success", FlightTime: 14.2, FuelUsed: 6.1, Script: "return 0.8"},
		{Level: "hover", Outcome: "failure", Reason: "timeout", FlightTime: 120, FuelUsed: 40},
	}
	for _, a := range attempts {
		if err := s.Record(ctx, a); err != nil {
			t.Fatalf("Record(%q) error = %v", a.Level, err)
		}
	}

	got, err := s.List(ctx, "touchdown")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List(touchdown) returned %d attempts, want 2", len(got))
	}
	// Newest first.
	if got[0].Outcome != "success" || got[0].Script != "return 0.8" {
		t.Errorf("newest attempt = %+v, want the success run", got[0])
	}
	if got[1].Reason != "ground_impact" {
		t.Errorf("older attempt reason = %q, want ground_impact", got[1].Reason)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List(all) returned %d attempts, want 3", len(all))
	}
}

func TestRecordRequiresLevel(t *testing.T) {
	s := openTestStore(t)
	if err := s.Record(context.Background(), Attempt{Outcome: "success"}); err == nil {
		t.Fatal("Record() with empty level succeeded, want error")
	}
}

func TestCompleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done, err := s.Completed(ctx, "touchdown")
	if err != nil {
		t.Fatalf("Completed() error = %v", err)
	}
	if done {
		t.Error("Completed() = true for level with no attempts")
	}

	if err := s.Record(ctx, Attempt{Level: "touchdown", Outcome: "failure", Reason: "out_of_bounds"}); err != nil {
		t.Fatal(err)
	}
	done, err = s.Completed(ctx, "touchdown")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("Completed() = true after failures only")
	}

	if err := s.Record(ctx, Attempt{Level: "touchdown", Outcome: "success", FuelUsed: 5}); err != nil {
		t.Fatal(err)
	}
	done, err = s.Completed(ctx, "touchdown")
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("Completed() = false after a success")
	}
}

func TestBestFuel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.BestFuel(ctx, "touchdown")
	if err != nil {
		t.Fatalf("BestFuel() error = %v", err)
	}
	if ok {
		t.Error("BestFuel() ok = true with no successes")
	}

	for _, a := range []Attempt{
		{Level: "touchdown", Outcome: "success", FuelUsed: 8.5},
		{Level: "touchdown", Outcome: "success", FuelUsed: 6.25},
		{Level: "touchdown", Outcome: "failure", FuelUsed: 1},
	} {
		if err := s.Record(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	best, ok, err := s.BestFuel(ctx, "touchdown")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || best != 6.25 {
		t.Errorf("BestFuel() = %v, %v, want 6.25, true", best, ok)
	}
}
