package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the canvas layers and the stats panel.
type Theme struct {
	Name      string
	Earth     lipgloss.Color
	Satellite lipgloss.Color
	Debris    lipgloss.Color
	Impact    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeOrbit = Theme{
		Name:      "orbit",
		Earth:     lipgloss.Color("#0077be"),
		Satellite: lipgloss.Color("#00ff88"),
		Debris:    lipgloss.Color("#ff4444"),
		Impact:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Earth:     lipgloss.Color("#005500"),
		Satellite: lipgloss.Color("#00ff00"),
		Debris:    lipgloss.Color("#88ff88"),
		Impact:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Earth:     lipgloss.Color("#888888"),
		Satellite: lipgloss.Color("#ffffff"),
		Debris:    lipgloss.Color("#cccccc"),
		Impact:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
	}

	Themes = []Theme{ThemeOrbit, ThemeRetroGreen, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// LayerStyle returns the foreground style for a canvas layer.
func (t Theme) LayerStyle(l Layer) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch l {
	case LayerEarth:
		return s.Foreground(t.Earth)
	case LayerSatellite:
		return s.Foreground(t.Satellite)
	case LayerDebris:
		return s.Foreground(t.Debris)
	case LayerImpact:
		return s.Foreground(t.Impact).Bold(true)
	}
	return s.Foreground(t.Text)
}
