package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/kyjohnso/kessler/internal/automation"
	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/experiment"
	"github.com/kyjohnso/kessler/internal/metrics"
	"github.com/kyjohnso/kessler/internal/octree"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/scenario"
	"github.com/kyjohnso/kessler/internal/server"
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/kyjohnso/kessler/internal/storage"
	"github.com/kyjohnso/kessler/internal/viz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runInfo(cfg *config.Config) storage.RunInfo {
	return storage.RunInfo{
		Scenario:   cfg.Scenario,
		Integrator: cfg.Integrator,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Objects:    cfg.Objects,
	}
}

// attachRecorder opens the event log and records every collision of s
// under runID. The returned close func is safe to call when disabled.
func attachRecorder(ctx context.Context, cfg *config.Config, s *sim.Simulator, runID string) (*storage.Recorder, func(), error) {
	if !recordEvents {
		return nil, func() {}, nil
	}
	events, err := storage.OpenEventLog(filepath.Join(cfg.Storage.DataDir, cfg.Storage.EventsDB))
	if err != nil {
		return nil, nil, err
	}
	rec := storage.NewRecorder(ctx, events, runID)
	s.AddObserver(rec)
	return rec, func() { events.Close() }, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	st := storage.New(cfg.Storage.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry(), log)
	if err := exp.Setup(); err != nil {
		return err
	}
	s := exp.GetSimulator()

	analytics := metrics.NewAnalytics(s.Body().GM, nil)
	s.AddObserver(analytics)

	ctx, stop := interruptContext()
	defer stop()

	runID := storage.NewRunID()
	recorder, closeEvents, err := attachRecorder(ctx, cfg, s, runID)
	if err != nil {
		return err
	}
	defer closeEvents()

	log.Info().
		Str("scenario", cfg.Scenario).
		Str("integrator", cfg.Integrator).
		Int("objects", s.Population().Len()).
		Float64("duration", cfg.Duration).
		Msg("running")

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return fmt.Errorf("event log: %w", err)
		}
	}

	if _, err := st.SaveAs(runID, runInfo(cfg), result, elapsed); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("collisions: %d\n", len(result.Events))
	fmt.Printf("final: %d live (%d satellites, %d debris)\n",
		result.FinalCounts.Live, result.FinalCounts.Satellites, result.FinalCounts.Debris)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	if recorder != nil {
		fmt.Printf("events recorded: %d\n", recorder.Recorded())
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	fmt.Println("\naltitude bins:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALT (KM)\tCOUNT\tMEAN ENERGY (J)")
	for _, b := range analytics.Summary().Bins {
		mean := "-"
		if b.Average != nil {
			mean = fmt.Sprintf("%.4g", *b.Average)
		}
		fmt.Fprintf(w, "%.0f\t%d\t%s\n", b.AltitudeKm, b.Count, mean)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	// the terminal belongs to the view
	log := zerolog.Nop()
	registry := experiment.NewRegistry()

	build := func(c config.Config) viz.Factory {
		return func() (*sim.Simulator, error) {
			return experiment.Build(&c, registry, c.Seed, log)
		}
	}

	if len(args) == 0 && preset == "" {
		return viz.RunInteractive(*cfg, registry.ListScenarios(), build)
	}
	return viz.RunLive(cfg.Scenario, cfg.Speed, build(*cfg))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	log := newLogger(cfg)

	s, err := experiment.Build(cfg, experiment.NewRegistry(), cfg.Seed, log)
	if err != nil {
		return err
	}
	s.Clock().SetSpeed(cfg.Speed)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.AddObserver(metrics.NewCollector(s.Body().GM, reg))

	ctx, stop := interruptContext()
	defer stop()

	runID := storage.NewRunID()
	_, closeEvents, err := attachRecorder(ctx, cfg, s, runID)
	if err != nil {
		return err
	}
	defer closeEvents()
	log.Info().Str("run_id", runID).Str("scenario", cfg.Scenario).Msg("simulation ready")

	srv := server.New(s, server.Options{
		Addr:        cfg.Server.Addr,
		BroadcastHz: cfg.Server.BroadcastHz,
		Gatherer:    reg,
		Logger:      log,
	})
	return srv.ListenAndServe(ctx)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := interruptContext()
	defer stop()

	mc := &automation.MonteCarloConfig{Base: cfg, Runs: runs, SeedFrom: cfg.Seed}
	outcomes, summary, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tCOLLISIONS\tFINAL DEBRIS\tPEAK DEBRIS\tDRIFT")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.0f\t%.2e\n", o.Seed, o.Collisions, o.FinalDebris, o.PeakDebris, o.EnergyDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nruns: %d\n", summary.Runs)
	fmt.Printf("collisions: %.2f ± %.2f\n", summary.MeanCollisions, summary.StdDevCollisions)
	fmt.Printf("final debris: %.2f ± %.2f (max %d)\n", summary.MeanDebris, summary.StdDevDebris, summary.MaxDebris)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, []string{"stress"})
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := interruptContext()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.Sweep{Base: cfg, Sizes: sizes, Runs: runs}, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTS\tRUNS\tCOLLISIONS\tSTDDEV\tFINAL DEBRIS\tSTDDEV")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.Objects, r.Summary.Runs,
			r.Summary.MeanCollisions, r.Summary.StdDevCollisions,
			r.Summary.MeanDebris, r.Summary.StdDevDebris)
	}
	return w.Flush()
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	plan, err := automation.LoadPlan(args[0])
	if err != nil {
		return err
	}

	st := storage.New(cfg.Storage.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	results, err := automation.RunPlan(ctx, plan, cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSCENARIO\tSTEPS\tCOLLISIONS\tDEBRIS")
	for _, r := range results {
		runID := r.SaveAs
		if runID == "" {
			runID = storage.NewRunID()
		}
		if _, err := st.SaveAs(runID, runInfo(&r.Config), r.Result, r.Wall); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", runID, r.Config.Scenario, r.Result.StepsTaken, len(r.Result.Events), r.Result.FinalCounts.Debris)
	}
	return w.Flush()
}

const benchRounds = 5

// runBench times one detection pass over a stress population with the
// octree and with the all-pairs scan.
func runBench(cmd *cobra.Command, args []string) error {
	body := physics.Earth()
	cfg := config.DefaultConfig()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTS\tOCTREE\tBRUTE\tSPEEDUP\tPAIRS\tNODES")

	for _, n := range benchSizes {
		pop := population.New(n)
		for _, obj := range scenario.Stress(body, rand.New(rand.NewSource(seed)), n) {
			pop.Add(obj)
		}

		tree := octree.New(r3.Vec{}, cfg.Octree.HalfSize, cfg.Octree.Capacity, cfg.Octree.MaxDepth)
		det := collision.NewDetector()

		var treePairs []collision.Pair
		start := time.Now()
		for i := 0; i < benchRounds; i++ {
			tree.Reset()
			for _, o := range pop.Objects() {
				tree.Insert(o.ID, o.State.Position)
			}
			treePairs = det.Detect(tree, pop)
		}
		treeTime := time.Since(start) / benchRounds

		var brutePairs []collision.Pair
		start = time.Now()
		for i := 0; i < benchRounds; i++ {
			brutePairs = collision.BruteForce(pop)
		}
		bruteTime := time.Since(start) / benchRounds

		speedup := float64(bruteTime) / float64(max(treeTime, 1))
		fmt.Fprintf(w, "%d\t%v\t%v\t%.1fx\t%d/%d\t%d\n",
			n, treeTime, bruteTime, speedup, len(treePairs), len(brutePairs), tree.Stats().Nodes)
	}
	return w.Flush()
}
