package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kyjohnso/kessler/internal/config"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

var scenarioInfo = map[string]string{
	"test_satellites": "ISS, Hubble and a GPS satellite",
	"stress":          "random shells from LEO to beyond GEO",
	"collision_pair":  "two co-orbiting objects that touch",
	"near_miss":       "two co-orbiting objects 1 km apart",
	"head_on":         "counter-rotating pair meeting at +X",
	"mixed":           "test satellites inside a random cloud",
	"catalog":         "objects loaded from a YAML catalog",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Builder turns an edited configuration into a simulator factory.
type Builder func(cfg config.Config) Factory

type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"objects", func(c *config.Config) float64 { return float64(c.Objects) }, func(c *config.Config, v float64) { c.Objects = int(v) }, 100},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = int64(v) }, 1},
	{"dt", func(c *config.Config) float64 { return c.Dt }, func(c *config.Config, v float64) { c.Dt = v }, 0.5},
	{"speed", func(c *config.Config) float64 { return c.Speed }, func(c *config.Config, v float64) { c.Speed = v }, 60},
}

type model struct {
	state, cursor int
	scenarios     []string
	base          config.Config
	cfg           config.Config
	build         Builder
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
}

// NewInteractiveApp lists scenarios, lets the user tune a few run fields
// and then opens the live view.
func NewInteractiveApp(base config.Config, scenarios []string, build Builder) *model {
	return &model{
		state:     stateMenu,
		scenarios: scenarios,
		base:      base,
		cfg:       base,
		build:     build,
		width:     80,
		height:    24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			m.liveModel.resize(msg.Width, msg.Height)
		}
		return m, nil
	default:
		if m.state == stateSim {
			next, cmd := m.liveModel.Update(msg)
			m.liveModel = next.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.liveModel.Update(msg)
		m.liveModel = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenarios) == 0 {
			return m, nil
		}
		m.cfg = m.base
		m.cfg.Scenario = m.scenarios[m.cursor]
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				f.set(&m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", f.get(&m.cfg))
	case "left", "h":
		f.set(&m.cfg, f.get(&m.cfg)-f.step)
	case "right", "l":
		f.set(&m.cfg, f.get(&m.cfg)+f.step)
	case "s":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

func (m *model) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	live, err := NewModel(m.cfg.Scenario, m.build(m.cfg))
	if err != nil {
		m.err = err
		return nil
	}
	live.Simulator().Clock().SetSpeed(m.cfg.Speed)
	live.resize(m.width, m.height)
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hint(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("KESSLER") + "\n    " + subStyle.Render("orbital debris cascade simulator") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.scenarios {
		desc := scenarioInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-16s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", idleStyle.Render(fmt.Sprintf("%-16s", name)), subStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hint("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.cfg.Scenario)) + "\n    " + subStyle.Render(scenarioInfo[m.cfg.Scenario]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%10g", f.get(&m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", f.name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", idleStyle.Render(fmt.Sprintf("%-10s", f.name)), subStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hint("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the scenario menu in the alternate screen.
func RunInteractive(base config.Config, scenarios []string, build Builder) error {
	_, err := tea.NewProgram(NewInteractiveApp(base, scenarios, build), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view for an already chosen scenario.
func RunLive(name string, speed float64, factory Factory) error {
	live, err := NewModel(name, factory)
	if err != nil {
		return err
	}
	live.Simulator().Clock().SetSpeed(speed)
	_, err = tea.NewProgram(live, tea.WithAltScreen()).Run()
	return err
}
