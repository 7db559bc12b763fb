package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/kyjohnso/kessler/internal/sim"
)

type ExportData struct {
	Run    RunMetadata  `json:"run"`
	Series []sim.Sample `json:"series"`
	Final  []StateRow   `json:"final"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	final, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Series: series, Final: final}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, data)
}

// ExportCSV writes the sampled series with a header row.
func ExportCSV(w io.Writer, series []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(seriesRows(series)); err != nil {
		return err
	}
	return cw.Error()
}
