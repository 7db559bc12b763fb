package export

import (
	"strings"
	"testing"

	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/kyjohnso/kessler/internal/storage"
	"github.com/kyjohnso/kessler/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0, viz.LayerSatellite)
	c.Set(2, 0, viz.LayerDebris)
	c.Set(3, 3, viz.LayerDebris)

	svg := CanvasToSVG(c, 4, viz.ThemeOrbit)
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 dots, got %d", got)
	}
	if !strings.Contains(svg, string(viz.ThemeOrbit.Satellite)) || !strings.Contains(svg, string(viz.ThemeOrbit.Debris)) {
		t.Error("expected layer colours in output")
	}
	if CanvasToSVG(nil, 4, viz.ThemeOrbit) != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestRenderSnapshot(t *testing.T) {
	rows := []storage.StateRow{
		{ID: 1, Category: "satellite", Position: [3]float64{7000, 0, 0}},
		{ID: 2, Category: "debris", Position: [3]float64{-7000, 0, 0}},
		{ID: 3, Category: "debris", Position: [3]float64{1e6, 0, 0}},
	}
	c := RenderSnapshot(rows, 40, 20, viz.NewCamera(8000))

	counts := map[viz.Layer]int{}
	for _, row := range c.Layers {
		for _, l := range row {
			counts[l]++
		}
	}
	if counts[viz.LayerSatellite] != 1 {
		t.Errorf("expected one satellite cell, got %d", counts[viz.LayerSatellite])
	}
	if counts[viz.LayerDebris] != 1 {
		t.Errorf("expected one debris cell (the far one is off canvas), got %d", counts[viz.LayerDebris])
	}
	if counts[viz.LayerEarth] == 0 {
		t.Error("expected earth outline")
	}
}

func TestChartToSVG(t *testing.T) {
	series := []sim.Sample{
		{Time: 0, Live: 2, Satellites: 2},
		{Time: 60, Live: 10, Debris: 10},
		{Time: 120, Live: 12, Debris: 12},
	}
	times, lines := SeriesLines(series, viz.ThemeOrbit)
	if len(lines) != 3 || lines[2].Values[2] != 12 {
		t.Fatalf("unexpected lines %+v", lines)
	}

	svg := ChartToSVG(times, lines, 400, 200)
	if got := strings.Count(svg, "<path"); got != 3 {
		t.Errorf("expected 3 paths, got %d", got)
	}
	if !strings.Contains(svg, ">debris</text>") {
		t.Error("expected debris label")
	}
	if ChartToSVG(times[:1], lines, 400, 200) != "" {
		t.Error("expected empty chart for a single sample")
	}
}
