// Package storage persists completed runs to disk: one directory per
// run holding metadata.json and the full telemetry stream as CSV. The
// engine only produces telemetry; replay and plotting tools consume
// these files.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/landsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one saved run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Level      string             `json:"level"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Controller string             `json:"controller"`
	Outcome    string             `json:"outcome"`
	Reason     string             `json:"reason,omitempty"`
	Message    string             `json:"message"`
	Ticks      int                `json:"ticks"`
	Elapsed    float64            `json:"elapsed"`
	FuelUsed   float64            `json:"fuel_used"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

var telemetryHeader = []string{
	"tick", "time", "x", "y", "vx", "vy",
	"rotation", "angular_vel", "fuel", "throttle", "gimbal", "outcome",
}

// Save writes one run to a fresh directory and returns its id.
func (s *Store) Save(level, controller string, dt float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", level, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Level:      level,
		Timestamp:  time.Now(),
		Dt:         dt,
		Controller: controller,
		Outcome:    result.Final.Outcome.String(),
		Reason:     result.Final.Reason.String(),
		Message:    result.Final.Message,
		Ticks:      result.Ticks,
		Elapsed:    result.Elapsed,
		FuelUsed:   result.FuelUsed,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "telemetry.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(telemetryHeader); err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		row := []string{
			strconv.Itoa(rec.Tick),
			ff(rec.Time),
			ff(rec.State.X), ff(rec.State.Y),
			ff(rec.State.VX), ff(rec.State.VY),
			ff(rec.State.Rotation), ff(rec.State.AngularVel),
			ff(rec.State.Fuel),
			ff(rec.Throttle), ff(rec.Gimbal),
			rec.Verdict.Outcome.String(),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, w.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns metadata for every saved run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Telemetry is the replayable portion of a stored run.
type Telemetry struct {
	Times    []float64
	Altitude []float64
	VSpeed   []float64
	Throttle []float64
}

// LoadTelemetry reads the trajectory columns used by plot and replay.
func (s *Store) LoadTelemetry(runID string) (*Telemetry, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "telemetry.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &Telemetry{}, nil
	}

	tel := &Telemetry{}
	for _, row := range records[1:] {
		if len(row) < len(telemetryHeader) {
			continue
		}
		t, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		y, _ := strconv.ParseFloat(row[3], 64)
		vy, _ := strconv.ParseFloat(row[5], 64)
		throttle, _ := strconv.ParseFloat(row[9], 64)
		tel.Times = append(tel.Times, t)
		tel.Altitude = append(tel.Altitude, y)
		tel.VSpeed = append(tel.VSpeed, vy)
		tel.Throttle = append(tel.Throttle, throttle)
	}
	return tel, nil
}
