package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, white)
	c.Set(3, 3, white)
	c.Set(-1, 0, white)
	c.Set(4, 0, white)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.Lit(3, 3) || c.Lit(1, 0) {
		t.Error("Lit disagrees with Set")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7, white)
	for _, p := range [][2]int{{0, 0}, {9, 7}} {
		if !c.Lit(p[0], p[1]) {
			t.Errorf("endpoint %v not drawn", p)
		}
	}

	c.Clear()
	for y := 0; y < c.PixelHeight(); y++ {
		for x := 0; x < c.PixelWidth(); x++ {
			if c.Lit(x, y) {
				t.Fatalf("pixel (%d, %d) still lit after Clear", x, y)
			}
		}
	}
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 3, white)
	if !c.Lit(10, 10) || !c.Lit(13, 10) || !c.Lit(10, 7) {
		t.Error("disc not filled")
	}
	if c.Lit(13, 13) {
		t.Error("corner outside the disc is lit")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	out := c.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "⠀⠀⠀" {
		t.Errorf("unexpected blank row %q", lines[0])
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := NewViewport(Bounds{MaxX: 1000, MaxY: 800}, 200, 80)
	if math.Abs(v.Scale()-0.1) > 1e-12 {
		t.Fatalf("expected scale 0.1, got %v", v.Scale())
	}

	x, y := v.Project(geom.Position{X: 500, Y: 400})
	if x != 100 || y != 40 {
		t.Errorf("centre projected to (%d, %d)", x, y)
	}

	p := v.Unproject(100, 40)
	if math.Abs(p.X-500) > 1e-9 || math.Abs(p.Y-400) > 1e-9 {
		t.Errorf("unproject gave %v", p)
	}

	// The world is narrower than the canvas, so it is letterboxed in x.
	q := v.Unproject(0, 0)
	if math.Abs(q.X+500) > 1e-9 || math.Abs(q.Y) > 1e-9 {
		t.Errorf("corner unproject gave %v", q)
	}
}

func TestFit(t *testing.T) {
	if b := Fit(nil, 0.1); b != DefaultWorld {
		t.Errorf("expected default world, got %+v", b)
	}
	b := Fit([]geom.Position{{X: 0, Y: 0}, {X: 100, Y: 50}}, 0.1)
	if b.MinX != -10 || b.MaxX != 110 || b.MinY != -5 || b.MaxY != 55 {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestNextTheme(t *testing.T) {
	seen := map[string]bool{}
	th := Themes[0]
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != Themes[0].Name {
		t.Errorf("themes did not cycle: %v", seen)
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() (Model, *sim.Simulation) {
	s := sim.New(sim.DefaultParams(), sim.DefaultSettings())
	m := NewModel(s, metrics.NewSet(10, metrics.Standard()...))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 138, Height: 42})
	return next.(Model), s
}

func TestModelToggles(t *testing.T) {
	m, s := newTestModel()

	for _, k := range []string{"t", "i", "a", "c", "f", "p"} {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	st := s.Settings()
	if !st.Trace || !st.Interpolate || !st.Taper || !st.ColorPaths || !st.ShowForces || !st.Paused {
		t.Errorf("expected every toggle on, got %+v", st)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show paused state")
	}

	next, _ := m.Update(key("]"))
	m = next.(Model)
	if got := s.Settings().TaperedLength; got != 55 {
		t.Errorf("expected tapered length 55, got %d", got)
	}
}

func TestModelRadius(t *testing.T) {
	m, _ := newTestModel()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.radius != 12 {
		t.Errorf("expected radius 12, got %v", m.radius)
	}
	for i := 0; i < 10; i++ {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(Model)
	}
	if m.radius != 0 {
		t.Errorf("expected radius clamped to 0, got %v", m.radius)
	}
}

func TestModelMouseLaunch(t *testing.T) {
	m, s := newTestModel()

	press := tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	drag := tea.MouseMsg{X: 30, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: 30, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}

	for _, msg := range []tea.MouseMsg{press, drag, release} {
		next, _ := m.Update(msg)
		m = next.(Model)
	}

	snap := s.Snapshot()
	if len(snap.Bodies) != 1 {
		t.Fatalf("expected 1 body, got %d", len(snap.Bodies))
	}
	b := snap.Bodies[0]
	want := m.view.Cell(20, 10-headerLines)
	if b.Position != want {
		t.Errorf("body at %v, want %v", b.Position, want)
	}
	if b.Velocity.Magnitude() <= 0 || math.Abs(b.Velocity.Theta()) > 1e-9 {
		t.Errorf("expected rightward launch, got %v", b.Velocity)
	}
}

func TestModelClickWithoutDrag(t *testing.T) {
	m, s := newTestModel()
	for _, a := range []tea.MouseAction{tea.MouseActionPress, tea.MouseActionRelease} {
		next, _ := m.Update(tea.MouseMsg{X: 5, Y: 5, Action: a, Button: tea.MouseButtonLeft})
		m = next.(Model)
	}
	snap := s.Snapshot()
	if len(snap.Bodies) != 1 || !snap.Bodies[0].Velocity.IsZero() {
		t.Errorf("expected one body at rest, got %+v", snap.Bodies)
	}
}

func TestModelFrameAndReset(t *testing.T) {
	m, s := newTestModel()
	if _, err := s.AddBody(20, geom.Position{X: 500, Y: 400}, geom.Vector{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Step(1); err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(FrameMsg{Snapshot: s.Snapshot(), FPS: 60})
	m = next.(Model)
	x, y := m.view.Project(geom.Position{X: 500, Y: 400})
	if !m.canvas.Lit(x, y) {
		t.Error("body not drawn")
	}
	if !strings.Contains(m.View(), "1 / 25") {
		t.Error("body count missing from panel")
	}

	next, _ = m.Update(key("r"))
	m = next.(Model)
	if s.Len() != 0 {
		t.Errorf("expected empty simulation after reset, got %d bodies", s.Len())
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
