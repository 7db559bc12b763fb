package metrics

import (
	"math"
	"testing"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
)

func TestBinFor(t *testing.T) {
	a := NewAnalytics(physics.Earth().GM, []float64{1000, 200, 400})

	tests := []struct {
		alt      float64
		expected int
	}{
		{100, -1},
		{200, 0},
		{399.9, 0},
		{400, 1},
		{999, 1},
		{1000, 2},
		{35786, 2},
	}

	for _, tt := range tests {
		if got := a.BinFor(tt.alt); got != tt.expected {
			t.Errorf("altitude %.1f: expected bin %d, got %d", tt.alt, tt.expected, got)
		}
	}
}

func TestAnalyticsSummary(t *testing.T) {
	gm := physics.Earth().GM
	a := NewAnalytics(gm, []float64{200, 400, 1000})

	objs := []population.Object{
		circularAt(250, dynamo.Satellite),
		circularAt(300, dynamo.Debris),
		circularAt(20200, dynamo.Satellite),
		circularAt(150, dynamo.Debris),
	}
	a.OnStep(report(objs...))
	s := a.Summary()

	if s.Objects != 4 || s.Satellites != 2 || s.Debris != 2 {
		t.Errorf("expected 4/2/2 counts, got %d/%d/%d", s.Objects, s.Satellites, s.Debris)
	}

	var total float64
	for _, o := range objs {
		total += o.State.TotalEnergy(gm)
	}
	if math.Abs(s.TotalEnergy-total)/math.Abs(total) > 1e-12 {
		t.Errorf("expected total energy %e, got %e", total, s.TotalEnergy)
	}

	if s.Bins[0].Count != 2 || s.Bins[0].Average == nil {
		t.Fatalf("expected 2 samples in the 200 km bin, got %+v", s.Bins[0])
	}
	mean := (objs[0].State.TotalEnergy(gm) + objs[1].State.TotalEnergy(gm)) / 2
	if math.Abs(*s.Bins[0].Average-mean)/math.Abs(mean) > 1e-12 {
		t.Errorf("expected mean %e, got %e", mean, *s.Bins[0].Average)
	}
	if s.Bins[1].Average != nil {
		t.Error("expected empty 400 km bin to have no average")
	}
	if s.Bins[2].Count != 1 {
		t.Errorf("expected GPS orbit in the last bin, got %d", s.Bins[2].Count)
	}
}

func TestAnalyticsRecomputesEachStep(t *testing.T) {
	a := NewAnalytics(physics.Earth().GM, nil)
	a.OnStep(report(circularAt(500, dynamo.Satellite), circularAt(500, dynamo.Debris)))
	a.OnStep(report(circularAt(500, dynamo.Satellite)))

	s := a.Summary()
	if s.Objects != 1 {
		t.Errorf("expected 1 object, got %d", s.Objects)
	}
	if s.Bins[a.BinFor(500)].Count != 1 {
		t.Errorf("expected stale samples cleared, got %d", s.Bins[a.BinFor(500)].Count)
	}
	if len(a.Edges()) != len(DefaultAltitudeBins) {
		t.Errorf("expected default edges, got %v", a.Edges())
	}
}
