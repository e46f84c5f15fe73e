package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/landsim/internal/control"
	"github.com/san-kum/landsim/internal/history"
	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/metrics"
	"github.com/san-kum/landsim/internal/mission"
	"github.com/san-kum/landsim/internal/scenario"
	"github.com/san-kum/landsim/internal/script"
	"github.com/san-kum/landsim/internal/sim"
	"github.com/san-kum/landsim/internal/storage"
	"github.com/san-kum/landsim/internal/tui"
)

// envConfig carries the settings that make more sense as environment
// than as flags: where run data lives and the controller watchdog.
type envConfig struct {
	DataDir string        `env:"LANDSIM_DATA" envDefault:".landsim"`
	Budget  time.Duration `env:"LANDSIM_BUDGET" envDefault:"50ms"`
}

var (
	envCfg envConfig

	dataDir      string
	dt           float64
	maxTime      float64
	scenarioFile string
	scriptFile   string
	controller   string
	throttle     float64
	kp           float64
	ki           float64
	kd           float64
	targetVY     float64
)

func main() {
	if err := env.Parse(&envCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "landsim",
		Short: "lunar descent guidance trainer",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envCfg.DataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run [level]",
		Short: "fly a level headless and record the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLevel,
	}
	addFlightFlags(runCmd)
	runCmd.Flags().Float64Var(&maxTime, "time", 0, "override the level time limit (seconds)")

	liveCmd := &cobra.Command{
		Use:   "live [level]",
		Short: "fly a level with the live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addFlightFlags(liveCmd)

	levelsCmd := &cobra.Command{
		Use:   "levels",
		Short: "list built-in levels",
		RunE:  listLevels,
	}

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "validate a level file",
		Args:  cobra.ExactArgs(1),
		RunE:  checkLevel,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot telemetry from a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	historyCmd := &cobra.Command{
		Use:   "history [level]",
		Short: "show past attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showHistory,
	}

	rootCmd.AddCommand(runCmd, liveCmd, levelsCmd, checkCmd, listCmd, plotCmd, exportCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFlightFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "timestep (seconds)")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "level file (yaml), instead of a built-in level")
	cmd.Flags().StringVar(&scriptFile, "script", "", "lua controller script")
	cmd.Flags().StringVar(&controller, "controller", "zero", "built-in controller (zero|constant|pid)")
	cmd.Flags().Float64Var(&throttle, "throttle", 0.5, "throttle for the constant controller")
	cmd.Flags().Float64Var(&kp, "kp", 0.8, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", 0.05, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", 0.2, "pid kd")
	cmd.Flags().Float64Var(&targetVY, "target-vy", -1.0, "pid descent rate target (m/s)")
}

// loadScenario resolves the level from --scenario or a built-in name.
func loadScenario(args []string) (*scenario.Scenario, string, error) {
	if scenarioFile != "" {
		sc, err := scenario.Load(scenarioFile)
		if err != nil {
			return nil, "", err
		}
		return sc, sc.Name, nil
	}
	name := "touchdown"
	if len(args) > 0 {
		name = args[0]
	}
	sc, err := scenario.Preset(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w (available: %s)", err, strings.Join(scenario.PresetNames(), ", "))
	}
	return sc, name, nil
}

// buildController wires either a lua script or a built-in controller.
// Script controllers get the watchdog budget; built-ins are trusted
// and run unbudgeted.
func buildController(sc *scenario.Scenario, sink script.Sink) (*control.Adapter, string, string, error) {
	if scriptFile != "" {
		src, err := os.ReadFile(scriptFile)
		if err != nil {
			return nil, "", "", fmt.Errorf("read script: %w", err)
		}
		ctrl, err := script.New(string(src), sc.ControlScheme, sink)
		if err != nil {
			return nil, "", "", err
		}
		return control.NewAdapter(ctrl, sc, envCfg.Budget), filepath.Base(scriptFile), string(src), nil
	}

	var ctrl control.Controller
	switch controller {
	case "zero":
		ctrl = control.Zero{For: sc.ControlScheme}
	case "constant":
		ctrl = control.Constant{Cmd: constantCommand(sc.ControlScheme, throttle)}
	case "pid":
		ctrl = control.NewDescentPID(kp, ki, kd, targetVY, dt, sc.ControlScheme)
	default:
		return nil, "", "", fmt.Errorf("unknown controller: %s (zero|constant|pid)", controller)
	}
	return control.NewAdapter(ctrl, sc, 0), controller, "", nil
}

func constantCommand(scheme lander.Scheme, level float64) lander.Command {
	switch scheme {
	case lander.SchemeVectored:
		return lander.ThrustVector{Level: level}
	case lander.SchemeDifferential:
		return lander.Differential{Left: level, Right: level}
	default:
		return lander.Throttle{Level: level}
	}
}

func openHistory() (*history.Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(dataDir, "history.db"))
}

func runLevel(cmd *cobra.Command, args []string) error {
	sc, level, err := loadScenario(args)
	if err != nil {
		return err
	}

	adapter, ctrlName, scriptSrc, err := buildController(sc, func(line string) {
		fmt.Println("  | " + line)
	})
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := sim.NewRunner(sc, adapter)
	runner.AddMetric(metrics.NewFuelUsed(sc.Initial.Fuel))
	runner.AddMetric(metrics.NewControlEffort())
	runner.AddMetric(metrics.NewMaxDescentRate())

	fmt.Printf("flying %s with %s...\n", level, ctrlName)
	start := time.Now()

	result, err := runner.Run(context.Background(), sim.Config{Dt: dt, MaxDuration: maxTime})
	if err != nil {
		return err
	}

	runID, err := st.Save(level, ctrlName, dt, result)
	if err != nil {
		return err
	}

	hist, err := openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()
	attempt := history.Attempt{
		Level:      level,
		Outcome:    result.Final.Outcome.String(),
		FlightTime: result.Elapsed,
		FuelUsed:   result.FuelUsed,
		Script:     scriptSrc,
	}
	if result.Final.Outcome == mission.Failure {
		attempt.Reason = result.Final.Reason.String()
	}
	if err := hist.Record(cmd.Context(), attempt); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("outcome: %s", result.Final.Outcome)
	if result.Final.Outcome == mission.Failure {
		fmt.Printf(" (%s)", result.Final.Reason)
	}
	fmt.Println()
	if result.Final.Message != "" {
		fmt.Printf("  %s\n", result.Final.Message)
	}
	fmt.Printf("flight time: %.1fs  ticks: %d\n", result.Elapsed, result.Ticks)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, _, err := loadScenario(args)
	if err != nil {
		return err
	}

	console := &tui.Console{}
	adapter, _, _, err := buildController(sc, console.Append)
	if err != nil {
		return err
	}

	m := tui.NewModel(sc, adapter, dt, console)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}

func listLevels(cmd *cobra.Command, args []string) error {
	hist, err := openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tSCHEME\tSTATUS\tDESCRIPTION")
	for _, name := range scenario.PresetNames() {
		sc, err := scenario.Preset(name)
		if err != nil {
			return err
		}
		status := "-"
		if done, err := hist.Completed(cmd.Context(), name); err == nil && done {
			status = "done"
			if best, ok, _ := hist.BestFuel(cmd.Context(), name); ok {
				status = fmt.Sprintf("done (%.1f kg)", best)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, sc.ControlScheme, status, sc.Description)
	}
	return w.Flush()
}

func checkLevel(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("ok: %s (%s scheme, %.0fs limit)\n", sc.Name, sc.ControlScheme, sc.MaxDuration)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLEVEL\tTIME\tOUTCOME\tFLIGHT\tFUEL\tCTRL")
	for _, run := range runs {
		outcome := run.Outcome
		if run.Reason != "" {
			outcome += " (" + run.Reason + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fs\t%.1f\t%s\n",
			run.ID,
			run.Level,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			outcome,
			run.Elapsed,
			run.FuelUsed,
			run.Controller,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tel, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}
	if len(tel.Times) == 0 {
		return fmt.Errorf("no telemetry to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("level: %s  outcome: %s\n", meta.Level, meta.Outcome)
	fmt.Printf("samples: %d\n\n", len(tel.Times))

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"altitude (m)", tel.Altitude},
		{"vertical speed (m/s)", tel.VSpeed},
		{"throttle", tel.Throttle},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func showHistory(cmd *cobra.Command, args []string) error {
	hist, err := openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()

	level := ""
	if len(args) > 0 {
		level = args[0]
	}
	attempts, err := hist.List(cmd.Context(), level)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("no attempts recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tLEVEL\tOUTCOME\tFLIGHT\tFUEL")
	for _, a := range attempts {
		outcome := a.Outcome
		if a.Reason != "" {
			outcome += " (" + a.Reason + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.1f\n",
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.Level, outcome, a.FlightTime, a.FuelUsed)
	}
	return w.Flush()
}
