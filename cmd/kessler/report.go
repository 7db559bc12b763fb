package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/export"
	"github.com/kyjohnso/kessler/internal/storage"
	"github.com/kyjohnso/kessler/internal/viz"
	"github.com/spf13/cobra"
)

// openStore resolves the data directory the same way run does.
func openStore(cmd *cobra.Command) (*storage.Store, *config.Config, error) {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	return storage.New(cfg.Storage.DataDir), cfg, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tCOLLISIONS\tDEBRIS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%gs\t%s\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Collisions,
			run.Final.Debris,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series))

	live := make([]float64, len(series))
	debris := make([]float64, len(series))
	collisions := make([]float64, len(series))
	for i, s := range series {
		live[i] = float64(s.Live)
		debris[i] = float64(s.Debris)
		collisions[i] = float64(s.Collisions)
	}

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{live, "live objects"},
		{debris, "debris"},
		{collisions, "cumulative collisions"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
		return nil
	}
	return storage.ExportJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportCSV(os.Stdout, series)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.ExportCSV(f, series); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	rows, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	th := viz.GetTheme(theme)
	reach := dynamo.EarthRadiusKm
	for _, r := range rows {
		reach = math.Max(reach, radius(r.Position))
	}
	canvas := export.RenderSnapshot(rows, 120, 60, viz.NewCamera(reach*1.1))

	if err := os.MkdirAll(outFile, 0755); err != nil {
		return err
	}
	snapshot := filepath.Join(outFile, runID+"-snapshot.svg")
	if err := os.WriteFile(snapshot, []byte(export.CanvasToSVG(canvas, 4, th)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", snapshot)

	times, lines := export.SeriesLines(series, th)
	if chart := export.ChartToSVG(times, lines, 800, 400); chart != "" {
		path := filepath.Join(outFile, runID+"-population.svg")
		if err := os.WriteFile(path, []byte(chart), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func listEvents(cmd *cobra.Command, args []string) error {
	_, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	events, err := storage.OpenEventLog(filepath.Join(cfg.Storage.DataDir, cfg.Storage.EventsDB))
	if err != nil {
		return err
	}
	defer events.Close()

	records, err := events.ListByRun(context.Background(), args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no events recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEP\tA\tB\tENERGY (J)\tREL (KM/S)\tFRAGMENTS\tALT (KM)")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%.1f\t%d\t%d\t%d\t%.3e\t%.3f\t%d\t%.1f\n",
			r.CollisionID, r.SimTime, r.Step, r.A, r.B, r.Energy, r.RelativeSpeed, len(r.Fragments), altitude(r.Point))
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenarios := make([]string, 0, len(config.Presets))
	if len(args) > 0 {
		scenarios = append(scenarios, args[0])
	} else {
		for name := range config.Presets {
			scenarios = append(scenarios, name)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tPRESET\tINTEG\tDT\tDURATION")
	sort.Strings(scenarios)
	found := false
	for _, sc := range scenarios {
		for _, name := range config.ListPresets(sc) {
			p := config.GetPreset(sc, name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\n", sc, name, p.Integrator, p.Dt, p.Duration)
			found = true
		}
	}
	if !found {
		fmt.Printf("no presets for scenario: %v\n", args)
		return nil
	}
	return w.Flush()
}

func radius(p [3]float64) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
}

func altitude(p [3]float64) float64 { return radius(p) - dynamo.EarthRadiusKm }
