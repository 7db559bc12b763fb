package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	statesFile   = "states.csv"
)

var (
	seriesHeader = []string{"time", "live", "satellites", "debris", "collisions", "total_energy"}
	statesHeader = []string{"id", "category", "generation", "x", "y", "z", "vx", "vy", "vz", "mass", "radius"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was configured.
type RunInfo struct {
	Scenario   string  `json:"scenario"`
	Integrator string  `json:"integrator"`
	Seed       int64   `json:"seed"`
	Dt         float64 `json:"dt"`
	Duration   float64 `json:"duration"`
	Objects    int     `json:"objects"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Steps       int                `json:"steps"`
	Collisions  int                `json:"collisions"`
	Skipped     int                `json:"skipped"`
	EnergyDrift float64            `json:"energy_drift"`
	Final       population.Counts  `json:"final"`
	WallTime    float64            `json:"wall_time_seconds"`
	Metrics     map[string]float64 `json:"metrics"`
}

// StateRow is one object of the final population as written to states.csv.
type StateRow struct {
	ID         uint64     `json:"id"`
	Category   string     `json:"category"`
	Generation uint32     `json:"generation"`
	Position   [3]float64 `json:"position"`
	Velocity   [3]float64 `json:"velocity"`
	Mass       float64    `json:"mass"`
	Radius     float64    `json:"radius"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Save writes metadata.json, series.csv and states.csv under a new run
// directory and returns the run id.
func (s *Store) Save(info RunInfo, result *sim.Result, wall time.Duration) (string, error) {
	return s.SaveAs(NewRunID(), info, result, wall)
}

func (s *Store) SaveAs(runID string, info RunInfo, result *sim.Result, wall time.Duration) (string, error) {
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		RunInfo:     info,
		Steps:       result.StepsTaken,
		Collisions:  len(result.Events),
		Skipped:     result.Skipped,
		EnergyDrift: result.EnergyDrift,
		Final:       result.FinalCounts,
		WallTime:    wall.Seconds(),
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), seriesHeader, seriesRows(result.Series)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, statesFile), statesHeader, stateRows(result.Final)); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorsmod.Wrapf(dynamo.ErrNotFound, "run %s", runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile), runID)
	if err != nil {
		return nil, err
	}

	series := make([]sim.Sample, 0, len(records))
	for i, record := range records {
		if len(record) != len(seriesHeader) {
			continue
		}
		f, err := parseFloats(record)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "run %s: %s row %d", runID, seriesFile, i+1)
		}
		series = append(series, sim.Sample{
			Time:        f[0],
			Live:        int(f[1]),
			Satellites:  int(f[2]),
			Debris:      int(f[3]),
			Collisions:  int(f[4]),
			TotalEnergy: f[5],
		})
	}
	return series, nil
}

func (s *Store) LoadStates(runID string) ([]StateRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statesFile), runID)
	if err != nil {
		return nil, err
	}

	rows := make([]StateRow, 0, len(records))
	for i, record := range records {
		if len(record) != len(statesHeader) {
			continue
		}
		id, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "run %s: %s row %d", runID, statesFile, i+1)
		}
		gen, err := strconv.ParseUint(record[2], 10, 32)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "run %s: %s row %d", runID, statesFile, i+1)
		}
		f, err := parseFloats(record[3:])
		if err != nil {
			return nil, errorsmod.Wrapf(err, "run %s: %s row %d", runID, statesFile, i+1)
		}
		rows = append(rows, StateRow{
			ID:         id,
			Category:   record[1],
			Generation: uint32(gen),
			Position:   [3]float64{f[0], f[1], f[2]},
			Velocity:   [3]float64{f[3], f[4], f[5]},
			Mass:       f[6],
			Radius:     f[7],
		})
	}
	return rows, nil
}

// SeriesPath is the location of a run's series.csv.
func (s *Store) SeriesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, seriesFile)
}

func seriesRows(series []sim.Sample) [][]string {
	rows := make([][]string, 0, len(series))
	for _, p := range series {
		rows = append(rows, []string{
			formatFloat(p.Time),
			strconv.Itoa(p.Live),
			strconv.Itoa(p.Satellites),
			strconv.Itoa(p.Debris),
			strconv.Itoa(p.Collisions),
			strconv.FormatFloat(p.TotalEnergy, 'e', 9, 64),
		})
	}
	return rows
}

func stateRows(objs []population.Object) [][]string {
	rows := make([][]string, 0, len(objs))
	for _, o := range objs {
		s := o.State
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			o.Physics.Category.String(),
			strconv.FormatUint(uint64(o.Lineage.Generation), 10),
			formatFloat(s.Position.X), formatFloat(s.Position.Y), formatFloat(s.Position.Z),
			formatFloat(s.Velocity.X), formatFloat(s.Velocity.Y), formatFloat(s.Velocity.Z),
			formatFloat(s.Mass),
			formatFloat(o.Physics.CollisionRadius),
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, v := range record {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the data records without the header.
func readCSV(path, runID string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorsmod.Wrapf(dynamo.ErrNotFound, "run %s", runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
