// Package export renders stored runs as standalone SVG files.
package export

import (
	"fmt"
	"strings"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/kyjohnso/kessler/internal/storage"
	"github.com/kyjohnso/kessler/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const background = "#0a0a0a"

// Braille dot-to-bit mapping
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// RenderSnapshot projects the final population of a run onto a canvas of
// w x h cells around a wireframe Earth.
func RenderSnapshot(rows []storage.StateRow, w, h int, cam *viz.Camera) *viz.Canvas {
	c := viz.NewCanvas(w, h)
	viz.Render3D(c, viz.EarthWireframe(dynamo.EarthRadiusKm, 48), cam, viz.LayerEarth)

	dw, dh := c.Dots()
	for _, row := range rows {
		p := r3.Vec{X: row.Position[0], Y: row.Position[1], Z: row.Position[2]}
		x, y, _, ok := cam.Project(p, dw, dh)
		if !ok {
			continue
		}
		layer := viz.LayerDebris
		if row.Category == dynamo.Satellite.String() {
			layer = viz.LayerSatellite
		}
		c.Set(x, y, layer)
	}
	return c
}

// CanvasToSVG draws every lit Braille dot as a circle coloured by its
// cell's layer.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			fill := layerColor(theme, canvas.Layers[row][col])

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func layerColor(theme viz.Theme, l viz.Layer) string {
	switch l {
	case viz.LayerEarth:
		return string(theme.Earth)
	case viz.LayerSatellite:
		return string(theme.Satellite)
	case viz.LayerDebris:
		return string(theme.Debris)
	case viz.LayerImpact:
		return string(theme.Impact)
	}
	return string(theme.Text)
}

// Line is one named series of a chart.
type Line struct {
	Label  string
	Color  string
	Values []float64
}

// SeriesLines picks the population curves out of a sampled run.
func SeriesLines(series []sim.Sample, theme viz.Theme) (times []float64, lines []Line) {
	times = make([]float64, len(series))
	live := make([]float64, len(series))
	sats := make([]float64, len(series))
	debris := make([]float64, len(series))
	for i, s := range series {
		times[i] = s.Time
		live[i] = float64(s.Live)
		sats[i] = float64(s.Satellites)
		debris[i] = float64(s.Debris)
	}
	return times, []Line{
		{Label: "live", Color: string(theme.Text), Values: live},
		{Label: "satellites", Color: string(theme.Satellite), Values: sats},
		{Label: "debris", Color: string(theme.Debris), Values: debris},
	}
}

// ChartToSVG plots lines against a shared x axis, scaled to the common
// bounds with 10% padding.
func ChartToSVG(xs []float64, lines []Line, width, height int) string {
	if len(xs) < 2 || len(lines) == 0 {
		return ""
	}

	minX, maxX := xs[0], xs[len(xs)-1]
	minY, maxY := lines[0].Values[0], lines[0].Values[0]
	for _, l := range lines {
		for _, v := range l.Values {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	for i, l := range lines {
		if len(l.Values) != len(xs) {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, l.Color))
		for j, v := range l.Values {
			x := (xs[j] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), l.Color, l.Label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
