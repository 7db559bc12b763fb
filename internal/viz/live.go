package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	recentEvents    = 5
	earthSegments   = 48
	frameRate       = time.Second / 30
)

// Factory builds a fresh simulator. The live view calls it on start and on
// every reset.
type Factory func() (*sim.Simulator, error)

type TickMsg time.Time

// Model is the live terminal view of one running simulation.
type Model struct {
	factory Factory
	sim     *sim.Simulator
	name    string

	canvas *Canvas
	camera *Camera
	earth  *Wireframe
	theme  int

	width, height int
	last          time.Time

	debrisHistory    []float64
	collisionHistory []float64
	events           []debris.Event
	collisions       int
	showHelp         bool
}

func NewModel(name string, factory Factory) (Model, error) {
	s, err := factory()
	if err != nil {
		return Model{}, err
	}
	radius := s.Body().RadiusKm
	return Model{
		factory:          factory,
		sim:              s,
		name:             name,
		canvas:           NewCanvas(width, height),
		camera:           NewCamera(viewRadius(s)),
		earth:            EarthWireframe(radius, earthSegments),
		width:            width,
		height:           height,
		debrisHistory:    make([]float64, 0, historyCapacity),
		collisionHistory: make([]float64, 0, historyCapacity),
	}, nil
}

// viewRadius frames the outermost object with a small margin.
func viewRadius(s *sim.Simulator) float64 {
	r := s.Body().RadiusKm
	for _, obj := range s.Population().Objects() {
		r = math.Max(r, obj.State.Radius())
	}
	return r * 1.1
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Simulator() *sim.Simulator { return m.sim }

// Update handles input and advances the simulation by the steps the clock
// owes for the elapsed wall time.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.advance(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	clock := m.sim.Clock()
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		clock.Toggle()
	case "1", "2", "3", "4":
		clock.SetSpeed(sim.SpeedPresets[key[0]-'1'])
	case "x":
		m.camera.RotateX(rotateStep)
	case "X":
		m.camera.RotateX(-rotateStep)
	case "y":
		m.camera.RotateY(rotateStep)
	case "Y":
		m.camera.RotateY(-rotateStep)
	case "z":
		m.camera.RotateZ(rotateStep)
	case "Z":
		m.camera.RotateZ(-rotateStep)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "r":
		if err := m.reset(); err != nil {
			return m, tea.Quit
		}
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cols := w - 52
	rows := h - 4
	if cols < 20 || rows < 8 {
		return
	}
	m.width, m.height = cols, rows
	m.canvas = NewCanvas(cols, rows)
}

func (m *Model) advance(now time.Time) {
	if m.last.IsZero() {
		m.last = now
		return
	}
	steps := m.sim.Clock().StepsFor(now.Sub(m.last))
	m.last = now
	if steps == 0 {
		return
	}

	collided := 0
	for i := 0; i < steps; i++ {
		r := m.sim.Step()
		collided += len(r.Events)
		m.events = append(m.events, r.Events...)
	}
	if len(m.events) > recentEvents {
		m.events = m.events[len(m.events)-recentEvents:]
	}
	m.collisions += collided

	counts := m.sim.Population().Counts()
	m.debrisHistory = appendCapped(m.debrisHistory, float64(counts.Debris))
	m.collisionHistory = appendCapped(m.collisionHistory, float64(collided))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the simulator and clears the view state. Speed and pause
// carry over.
func (m *Model) reset() error {
	prev := m.sim.Clock()
	s, err := m.factory()
	if err != nil {
		return err
	}
	s.Clock().SetSpeed(prev.Speed)
	s.Clock().Paused = prev.Paused

	m.sim = s
	m.camera.Reset()
	m.last = time.Time{}
	m.debrisHistory = m.debrisHistory[:0]
	m.collisionHistory = m.collisionHistory[:0]
	m.events = m.events[:0]
	m.collisions = 0
	return nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.earth, m.camera, LayerEarth)

	dw, dh := m.canvas.Dots()
	for _, obj := range m.sim.Population().Objects() {
		x, y, _, ok := m.camera.Project(obj.State.Position, dw, dh)
		if !ok {
			continue
		}
		layer := LayerDebris
		if obj.Physics.Category == dynamo.Satellite {
			layer = LayerSatellite
		}
		m.canvas.Set(x, y, layer)
	}
	for _, ev := range m.events {
		if x, y, _, ok := m.camera.Project(ev.Point, dw, dh); ok {
			m.canvas.Set(x, y, LayerImpact)
		}
	}
}

// View renders the canvas beside the stats panel.
func (m Model) View() string {
	m.draw()
	theme := Themes[m.theme]
	canvasView := canvasStyle.Render(m.canvas.Render(theme.LayerStyle))

	clock := m.sim.Clock()
	counts := m.sim.Population().Counts()

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.name)) + "\n")
	if clock.Paused {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", FormatSimTime(clock.Current))
	row("Speed", fmt.Sprintf("x%g", clock.Speed))
	row("Objects", fmt.Sprintf("%d", counts.Live))
	row("Satellites", fmt.Sprintf("%d", counts.Satellites))
	row("Debris", fmt.Sprintf("%d", counts.Debris))
	row("Collisions", fmt.Sprintf("%d", m.collisions))

	if len(m.debrisHistory) > 1 {
		chart := asciigraph.Plot(m.debrisHistory, asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("Debris"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.collisionHistory) > 0 {
		s.WriteString(MetricLabel.Render("Impacts") + SparklineChart(m.collisionHistory, 30) + "\n")
	}

	if len(m.events) > 0 {
		s.WriteString("\nRECENT COLLISIONS\n")
		for i := len(m.events) - 1; i >= 0; i-- {
			ev := m.events[i]
			s.WriteString(EventStyle.Render(fmt.Sprintf("%s  #%d×#%d  %d frags  %.1f km/s",
				FormatSimTime(ev.Time), ev.A, ev.B, len(ev.Fragments), ev.RelativeSpeed)) + "\n")
		}
	}

	s.WriteString(KeyHint.Render("\nSP:Pause 1-4:Speed R:Reset Q:Quit\nXYZ:Rotate +/-:Zoom T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  1-4      - 1x, 60x, 3600x, 86400x   ║
║  x/y/z    - Rotate view (shift: back)║
║  +/-      - Zoom                     ║
║  R        - Reset simulation         ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// FormatSimTime renders simulated seconds as [Nd ]hh:mm:ss.
func FormatSimTime(seconds float64) string {
	total := int64(seconds)
	days := total / 86400
	h := (total % 86400) / 3600
	mnt := (total % 3600) / 60
	sec := total % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, mnt, sec)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, mnt, sec)
}
