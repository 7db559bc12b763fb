package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func openTestLog(t *testing.T) *EventLog {
	t.Helper()
	log, err := OpenEventLog(filepath.Join(t.TempDir(), "db", "events.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestEventLogAppendList(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	events := []debris.Event{
		{ID: 1, Time: 12, A: 3, B: 9, Point: r3.Vec{X: 7000, Y: 1, Z: -2}, Energy: 1.1e11, RelativeSpeed: 14.9, Fragments: []dynamo.ObjectID{20, 21, 22}},
		{ID: 2, Time: 12, A: 4, B: 5, Energy: 0, Fragments: []dynamo.ObjectID{23, 24}},
	}
	if err := log.Append(ctx, "run-a", 12, events); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := log.Append(ctx, "run-b", 1, events[:1]); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := log.ListByRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	first := got[0]
	if first.CollisionID != 1 || first.A != 3 || first.B != 9 || first.Step != 12 {
		t.Errorf("unexpected record %+v", first)
	}
	if first.Point != [3]float64{7000, 1, -2} || first.RelativeSpeed != 14.9 {
		t.Errorf("unexpected geometry %+v", first)
	}
	if len(first.Fragments) != 3 || first.Fragments[2] != 22 {
		t.Errorf("expected fragment ids, got %v", first.Fragments)
	}

	n, err := log.Count(ctx, "run-b")
	if err != nil || n != 1 {
		t.Errorf("expected 1 event for run-b, got %d (%v)", n, err)
	}
	n, _ = log.Count(ctx, "run-c")
	if n != 0 {
		t.Errorf("expected no events for unknown run, got %d", n)
	}
}

func TestEventLogRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	ev := []debris.Event{{ID: 1, Fragments: []dynamo.ObjectID{1, 2}}}
	if err := log.Append(ctx, "run", 1, ev); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	err := log.Append(ctx, "run", 2, ev)
	if err == nil || !strings.Contains(err.Error(), "failed to append event 1") {
		t.Errorf("expected wrapped duplicate error, got %v", err)
	}
	if n, _ := log.Count(ctx, "run"); n != 1 {
		t.Errorf("expected rollback to keep 1 event, got %d", n)
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)
	rec := NewRecorder(ctx, log, "run")

	rec.OnStep(&sim.StepReport{Step: 1})
	rec.OnStep(&sim.StepReport{Step: 2, Events: []debris.Event{{ID: 1, Fragments: []dynamo.ObjectID{5, 6}}}})
	rec.OnStep(&sim.StepReport{Step: 3, Events: []debris.Event{{ID: 2, Fragments: []dynamo.ObjectID{7, 8}}, {ID: 3, Fragments: []dynamo.ObjectID{9, 10}}}})

	if err := rec.Err(); err != nil {
		t.Fatalf("recorder failed: %v", err)
	}
	if rec.Recorded() != 3 {
		t.Errorf("expected 3 recorded, got %d", rec.Recorded())
	}
	got, _ := log.ListByRun(ctx, "run")
	if len(got) != 3 || got[2].Step != 3 {
		t.Errorf("unexpected stored events %+v", got)
	}

	rec.OnStep(&sim.StepReport{Step: 4, Events: []debris.Event{{ID: 1}}})
	if rec.Err() == nil {
		t.Error("expected duplicate to surface through Err")
	}
}

func TestOpenEventLogBadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenEventLog(filepath.Join(blocker, "events.db"))
	if err == nil || !strings.Contains(err.Error(), "failed to create database directory") {
		t.Errorf("expected directory error, got %v", err)
	}
}
