package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/sim"
	_ "modernc.org/sqlite"
)

// EventRecord is one row of the collision_events table.
type EventRecord struct {
	RunID         string     `json:"run_id"`
	CollisionID   uint32     `json:"collision_id"`
	SimTime       float64    `json:"sim_time"`
	Step          int        `json:"step"`
	A             uint64     `json:"a"`
	B             uint64     `json:"b"`
	Point         [3]float64 `json:"point"`
	Energy        float64    `json:"energy"`
	RelativeSpeed float64    `json:"relative_speed"`
	Fragments     []uint64   `json:"fragments"`
}

// EventLog persists collision events to SQLite.
type EventLog struct {
	db *sql.DB
}

// OpenEventLog opens or creates the database at dbPath and its schema.
func OpenEventLog(dbPath string) (*EventLog, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errorsmod.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errorsmod.Wrap(err, "failed to open sqlite database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errorsmod.Wrap(err, "failed to ping sqlite database")
	}

	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, errorsmod.Wrap(err, "failed to create schemas")
	}

	return &EventLog{db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS collision_events (
			run_id TEXT NOT NULL,
			collision_id INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			step INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			point_x REAL NOT NULL,
			point_y REAL NOT NULL,
			point_z REAL NOT NULL,
			energy REAL NOT NULL,
			relative_speed REAL NOT NULL,
			fragments TEXT NOT NULL,
			PRIMARY KEY (run_id, collision_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_collision_events_run ON collision_events(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_collision_events_time ON collision_events(run_id, sim_time);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (l *EventLog) Close() error { return l.db.Close() }

// Append stores the events of one step in a single transaction.
func (l *EventLog) Append(ctx context.Context, runID string, step int, events []debris.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO collision_events (run_id, collision_id, sim_time, step, a, b, point_x, point_y, point_z, energy, relative_speed, fragments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, ev := range events {
		fragments, err := json.Marshal(ev.Fragments)
		if err != nil {
			return errorsmod.Wrap(err, "failed to marshal fragments")
		}
		_, err = tx.ExecContext(ctx, query,
			runID, uint32(ev.ID), ev.Time, step, int64(ev.A), int64(ev.B),
			ev.Point.X, ev.Point.Y, ev.Point.Z, ev.Energy, ev.RelativeSpeed, string(fragments),
		)
		if err != nil {
			return errorsmod.Wrapf(err, "failed to append event %d", ev.ID)
		}
	}
	return tx.Commit()
}

func (l *EventLog) ListByRun(ctx context.Context, runID string) ([]EventRecord, error) {
	query := `SELECT run_id, collision_id, sim_time, step, a, b, point_x, point_y, point_z, energy, relative_speed, fragments
		FROM collision_events WHERE run_id = ? ORDER BY collision_id ASC`
	rows, err := l.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "failed to list events of run %s", runID)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var e EventRecord
		var a, b int64
		var fragments string
		err := rows.Scan(
			&e.RunID, &e.CollisionID, &e.SimTime, &e.Step, &a, &b,
			&e.Point[0], &e.Point[1], &e.Point[2], &e.Energy, &e.RelativeSpeed, &fragments,
		)
		if err != nil {
			return nil, errorsmod.Wrap(err, "failed to scan event")
		}
		e.A, e.B = uint64(a), uint64(b)
		if err := json.Unmarshal([]byte(fragments), &e.Fragments); err != nil {
			return nil, errorsmod.Wrapf(err, "failed to decode fragments of collision %d", e.CollisionID)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (l *EventLog) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collision_events WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Recorder is an Observer that appends every step's events to the log. The
// first write error stops further writes and is kept for Err.
type Recorder struct {
	ctx   context.Context
	log   *EventLog
	runID string

	mu  sync.Mutex
	err error
	n   int
}

func NewRecorder(ctx context.Context, log *EventLog, runID string) *Recorder {
	return &Recorder{ctx: ctx, log: log, runID: runID}
}

func (r *Recorder) OnStep(report *sim.StepReport) {
	if len(report.Events) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.log.Append(r.ctx, r.runID, report.Step, report.Events); err != nil {
		r.err = err
		return
	}
	r.n += len(report.Events)
}

func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Recorded is the number of events written.
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
