package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	panelWidth  = 38
	headerLines = 1
	radiusStep  = 2
	taperStep   = 5
	// forceLength is the drawn length of net-force arrows in sub-pixels.
	forceLength = 12
)

// FrameMsg carries a rendered tick from the scheduler goroutine.
type FrameMsg struct {
	Snapshot sim.Snapshot
	FPS      int
}

type Option func(*Model)

func WithLogger(l logr.Logger) Option {
	return func(m *Model) { m.log = l }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

func WithWorld(b Bounds) Option {
	return func(m *Model) { m.world = b }
}

// WithRadius sets the radius of bodies added with the mouse.
func WithRadius(r float64) Option {
	return func(m *Model) { m.radius = r }
}

// WithObservers registers observers that see every rendered frame.
func WithObservers(obs ...sim.Observer) Option {
	return func(m *Model) { m.observers = append(m.observers, obs...) }
}

// Model is the interactive front end. Physics runs elsewhere; the model
// only reads snapshots and forwards input to the simulation.
type Model struct {
	sim     *sim.Simulation
	metrics *metrics.Set
	snap    sim.Snapshot
	fps     int

	canvas        *Canvas
	view          Viewport
	world         Bounds
	width, height int

	radius  float64
	theme   Theme
	pressed bool
	press   geom.Position
	drag    geom.Position
	status  string

	observers []sim.Observer
	log       logr.Logger
}

func NewModel(s *sim.Simulation, set *metrics.Set, opts ...Option) Model {
	m := Model{
		sim:     s,
		metrics: set,
		snap:    s.Snapshot(),
		world:   DefaultWorld,
		width:   120,
		height:  40,
		radius:  10,
		theme:   Themes[0],
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case FrameMsg:
		m.snap = msg.Snapshot
		m.fps = msg.FPS
		m.draw()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		m.draw()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	st := m.sim.Settings()
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.sim.TogglePause()
	case "t":
		m.sim.SetTrace(!st.Trace)
	case "i":
		m.sim.SetInterpolate(!st.Interpolate)
	case "a":
		m.sim.SetTaper(!st.Taper)
	case "[":
		m.sim.SetTaperedLength(st.TaperedLength - taperStep)
	case "]":
		m.sim.SetTaperedLength(st.TaperedLength + taperStep)
	case "c":
		m.sim.SetColorPaths(!st.ColorPaths)
	case "f":
		m.sim.SetShowForces(!st.ShowForces)
	case "up", "k":
		m.radius = math.Min(m.radius+radiusStep, m.sim.Params().MaxRadius)
	case "down", "j":
		m.radius = math.Max(m.radius-radiusStep, 0)
	case "r":
		if err := m.sim.Reset(); err != nil {
			m.status = err.Error()
			break
		}
		if m.metrics != nil {
			m.metrics.Reset()
		}
	case "T":
		m.theme = NextTheme(m.theme)
	case "z":
		m.world = Fit(m.bodyPositions(), 0.2)
		m.resize()
	}

	m.snap.Settings = m.sim.Settings()
	m.draw()
	return m, nil
}

// handleMouse implements click-and-drag launching: the press fixes the
// body's position and the release sets its initial velocity.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	pos := m.view.Cell(msg.X, msg.Y-headerLines)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pressed = true
		m.press, m.drag = pos, pos
	case tea.MouseActionMotion:
		if m.pressed {
			m.drag = pos
		}
	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		id, err := m.sim.Launch(m.radius, m.press, pos)
		if err != nil {
			m.status = err.Error()
			m.log.V(1).Info("launch rejected", "error", err.Error())
			return
		}
		m.status = fmt.Sprintf("added body %d", id)
		m.snap = m.sim.Snapshot()
	}
}

func (m *Model) resize() {
	cw := max(m.width-panelWidth, 10)
	ch := max(m.height-headerLines-1, 5)
	m.canvas = NewCanvas(cw, ch)
	m.view = NewViewport(m.world, m.canvas.PixelWidth(), m.canvas.PixelHeight())
	m.draw()
}

func (m *Model) bodyPositions() []geom.Position {
	points := make([]geom.Position, len(m.snap.Bodies))
	for i, b := range m.snap.Bodies {
		points[i] = b.Position
	}
	return points
}

func (m *Model) draw() {
	m.canvas.Clear()
	st := m.snap.Settings
	scale := m.view.Scale()

	if st.Trace {
		for _, b := range m.snap.Bodies {
			col := m.theme.Trace
			if st.ColorPaths {
				col = b.Color
			}
			m.drawPath(b.Path, b.Position, col)
		}
	}

	for _, b := range m.snap.Bodies {
		x, y := m.view.Project(b.Position)
		m.canvas.FillCircle(x, y, int(b.Radius/2*scale), b.Color)

		if st.ShowForces && !b.NetForce.IsZero() {
			tip := b.Position.Translate(b.NetForce.WithMagnitude(forceLength/scale), 1)
			tx, ty := m.view.Project(tip)
			m.canvas.DrawLine(x, y, tx, ty, m.theme.Force)
		}
	}

	if m.pressed {
		px, py := m.view.Project(m.press)
		dx, dy := m.view.Project(m.drag)
		m.canvas.FillCircle(px, py, int(m.radius/2*scale), m.theme.Drag)
		m.canvas.DrawLine(px, py, dx, dy, m.theme.Drag)
	}
}

// drawPath joins the trace points and connects the newest one to the body.
func (m *Model) drawPath(points []geom.Position, head geom.Position, col colorful.Color) {
	if len(points) == 0 {
		return
	}
	px, py := m.view.Project(points[0])
	lineTo := func(p geom.Position) {
		x, y := m.view.Project(p)
		m.canvas.DrawLine(px, py, x, y, col)
		px, py = x, y
	}
	for _, p := range points[1:] {
		lineTo(p)
	}
	lineTo(head)
}

func (m Model) View() string {
	st := m.snap.Settings

	status := StatusRunning.Render("RUNNING")
	if st.Paused {
		status = StatusPaused.Render("PAUSED")
	}
	header := headerStyle.Render("GRAVSIM") + "  " + status
	if m.status != "" {
		header += "  " + StatusError.Render(m.status)
	}

	var s strings.Builder
	s.WriteString(row("Tick", fmt.Sprintf("%d", m.snap.Tick)))
	s.WriteString(row("Time", fmt.Sprintf("%.1f", m.snap.Elapsed)))
	limit := "∞"
	if m.snap.Params.BodyLimit > 0 {
		limit = fmt.Sprintf("%d", m.snap.Params.BodyLimit)
	}
	s.WriteString(row("Bodies", fmt.Sprintf("%d / %s", len(m.snap.Bodies), limit)))
	s.WriteString(row("Radius", fmt.Sprintf("%.0f", m.radius)))
	s.WriteString(row("FPS", fmt.Sprintf("%d", m.fps)))

	if m.metrics != nil {
		values := m.metrics.Values()
		s.WriteString(row("Energy", fmt.Sprintf("%.2f", values["kinetic_energy"]+values["potential_energy"])))
		s.WriteString(row("Momentum", fmt.Sprintf("%.3f", values["momentum"])))
	}

	s.WriteString(Separator(panelWidth-6) + "\n")
	s.WriteString(row("Trace", toggle(st.Trace)))
	s.WriteString(row("Interpolate", toggle(st.Interpolate)))
	s.WriteString(row("Taper", fmt.Sprintf("%s (%d)", toggle(st.Taper), st.TaperedLength)))
	s.WriteString(row("Color", toggle(st.ColorPaths)))
	s.WriteString(row("Forces", toggle(st.ShowForces)))

	if m.metrics != nil {
		if hist := m.metrics.History("kinetic_energy"); len(hist) > 1 {
			chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(panelWidth-14), asciigraph.Caption("Kinetic energy"))
			s.WriteString("\n" + graphStyle.Render(chart) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("drag:launch  ↑↓:radius\nSP:pause t:trace i:interp\na:taper []:length c:color\nf:forces r:reset z:fit q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), panelStyle.Render(s.String()))
	return header + "\n" + main
}
