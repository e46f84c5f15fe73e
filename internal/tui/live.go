// Package tui renders a live terminal view of a descent: a braille
// canvas showing the vehicle, pad, and thrust plume next to a stats
// panel with telemetry, an altitude chart, and script console output.
package tui

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/landsim/internal/control"
	"github.com/san-kum/landsim/internal/lander"
	"github.com/san-kum/landsim/internal/mission"
	"github.com/san-kum/landsim/internal/physics"
	"github.com/san-kum/landsim/internal/scenario"
)

const (
	canvasWidth     = 64
	canvasHeight    = 20
	historyCapacity = 600
	consoleCapacity = 6
)

var (
	canvasStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	consoleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Console is a bounded, concurrency-safe buffer for controller print
// output. Script controllers run on the UI goroutine, but the sink is
// also handed to headless runs, so it locks anyway.
type Console struct {
	mu    sync.Mutex
	lines []string
}

// Append adds one line, evicting the oldest past capacity.
func (c *Console) Append(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	if len(c.lines) > consoleCapacity {
		c.lines = c.lines[len(c.lines)-consoleCapacity:]
	}
}

// Lines returns a copy of the current buffer.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

type TickMsg time.Time

// Model steps the simulation one tick per frame, so wall time tracks
// simulated time when the frame interval equals the scenario timestep.
type Model struct {
	sc      *scenario.Scenario
	integ   *physics.Integrator
	adapter *control.Adapter
	eval    *mission.Evaluator
	console *Console

	state      lander.VehicleState
	t          float64
	tick       int
	dt         float64
	verdict    mission.Verdict
	running    bool
	canvas     *canvas
	altHistory []float64
}

// NewModel builds the live view for one scenario. A nil console is
// allowed for controllers that never print.
func NewModel(sc *scenario.Scenario, adapter *control.Adapter, dt float64, console *Console) Model {
	return Model{
		sc:         sc,
		integ:      physics.New(sc),
		adapter:    adapter,
		eval:       mission.NewEvaluator(sc),
		console:    console,
		state:      sc.Initial,
		dt:         dt,
		running:    true,
		canvas:     newCanvas(canvasWidth, canvasHeight),
		altHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) frameInterval() time.Duration {
	return time.Duration(m.dt * float64(time.Second))
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input and advances the simulation on frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.verdict.Outcome.Terminal() {
				m.running = !m.running
			}
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && !m.verdict.Outcome.Terminal() {
			m.step()
		}
		return m, tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step mirrors the headless run loop: timeout, command, integrate,
// evaluate, in that order.
func (m *Model) step() {
	if m.t > m.sc.MaxDuration {
		m.verdict = m.eval.Fail(mission.Timeout, "")
		m.running = false
		return
	}

	cmd, err := m.adapter.Command(m.state.Snapshot())
	if err != nil {
		m.verdict = m.eval.Fail(mission.ControllerFault, err.Error())
		m.running = false
		return
	}

	next, err := m.integ.Step(m.state, cmd, m.dt)
	if err != nil {
		m.verdict = m.eval.Fail(mission.Diverged, err.Error())
		m.running = false
		return
	}
	m.state = next
	m.tick++
	m.t += m.dt

	m.verdict = m.eval.Eval(m.state, m.dt)
	if m.verdict.Outcome.Terminal() {
		m.running = false
	}

	m.altHistory = append(m.altHistory, m.state.Y)
	if len(m.altHistory) > historyCapacity {
		m.altHistory = m.altHistory[1:]
	}
}

// reset restores the initial conditions for another attempt.
func (m *Model) reset() {
	m.state = m.sc.Initial
	m.t = 0
	m.tick = 0
	m.verdict = mission.Verdict{}
	m.running = true
	m.integ.Reset()
	m.adapter.Reset()
	m.eval.Reset()
	m.altHistory = m.altHistory[:0]
}

// draw renders the world onto the canvas: ground, pad, vehicle, and
// thrust plume when the engine is burning.
func (m *Model) draw() {
	m.canvas.clear()
	cw, ch := canvasWidth*2, canvasHeight*4

	// Vertical scale keeps the initial altitude inside the top quarter.
	span := math.Max(m.sc.Initial.Y*1.25, 20)
	groundY := ch - 5
	scale := float64(groundY-2) / span
	centerX := m.sc.Target.X

	toScreen := func(x, y float64) (int, int) {
		sx := cw/2 + int((x-centerX)*scale)
		sy := groundY - int(y*scale)
		return sx, sy
	}

	m.canvas.line(0, groundY, cw-1, groundY)

	// Pad marker at the target point.
	px, _ := toScreen(m.sc.Target.X, 0)
	for dx := -4; dx <= 4; dx++ {
		m.canvas.set(px+dx, groundY-1)
	}

	lx, ly := toScreen(m.state.X, m.state.Y)
	ux, uy := -math.Sin(m.state.Rotation), math.Cos(m.state.Rotation)

	// Body along the nose axis, legs splayed at the base.
	body := 6.0
	nx, ny := lx+int(ux*body), ly-int(uy*body)
	bx, by := lx-int(ux*body), ly+int(uy*body)
	m.canvas.line(nx, ny, bx, by)
	m.canvas.line(bx, by, bx-int(uy*4)-2, by-int(ux*4)+2)
	m.canvas.line(bx, by, bx+int(uy*4)+2, by+int(ux*4)-2)

	if m.integ.Throttle() > 0.05 && m.state.Fuel > 0 {
		plume := 3 + m.integ.Throttle()*6
		gim := m.integ.Gimbal()
		gx, gy := -math.Sin(m.state.Rotation+gim), math.Cos(m.state.Rotation+gim)
		m.canvas.line(bx, by, bx-int(gx*plume), by+int(gy*plume))
	}
}

func (m Model) status() string {
	switch {
	case m.verdict.Outcome == mission.Success:
		return successStyle.Render("LANDED  " + m.verdict.Message)
	case m.verdict.Outcome == mission.Failure:
		return failStyle.Render(strings.ToUpper(m.verdict.Reason.String()) + "  " + m.verdict.Message)
	case m.eval.Stabilizing():
		return fmt.Sprintf("STABILIZING %.1fs / %.1fs",
			m.eval.PersistenceTimer(), m.sc.Success.PersistencePeriod)
	case !m.running:
		return "PAUSED"
	default:
		return "DESCENDING"
	}
}

// View renders the frame.
func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.sc.Name)) + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.altHistory) > 1 {
		chart := asciigraph.Plot(m.altHistory, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Altitude"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, format string, args ...any) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n")
	}
	row("Time", "%.1fs", m.t)
	row("Altitude", "%.1f m", m.state.Y)
	row("Position", "%+.1f m", m.state.X-m.sc.Target.X)
	row("Velocity", "%+.2f / %+.2f m/s", m.state.VX, m.state.VY)
	row("Rotation", "%+.2f rad", m.state.Rotation)
	row("Fuel", "%.1f kg", m.state.Fuel)
	row("Throttle", "%3.0f%%", m.integ.Throttle()*100)
	if m.sc.ControlScheme == lander.SchemeVectored {
		row("Gimbal", "%+.3f rad", m.integ.Gimbal())
	}

	if m.console != nil {
		if lines := m.console.Lines(); len(lines) > 0 {
			s.WriteString("\nCONSOLE\n")
			for _, line := range lines {
				s.WriteString(consoleStyle.Render("  "+line) + "\n")
			}
		}
	}

	s.WriteString(helpStyle.Render("\nSP:Pause  R:Retry  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()))
}
