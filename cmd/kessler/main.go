package main

import (
	"fmt"
	"os"

	"github.com/kyjohnso/kessler/internal/config"
	"github.com/kyjohnso/kessler/internal/experiment"
	"github.com/kyjohnso/kessler/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	dt         float64
	duration   float64
	speed      float64
	seed       int64
	objects    int
	integrator string
	catalog    string

	recordEvents bool
	addr         string
	runs         int
	sizes        []int
	benchSizes   []int
	outFile      string
	theme        string
)

// main registers the commands and opens the scenario menu when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "kessler",
		Short:         "orbital debris cascade simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and store the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&recordEvents, "events", false, "record collision events to sqlite")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a simulation in the live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "stream a running simulation over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&recordEvents, "events", false, "record collision events to sqlite")

	montecarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "run a scenario under many seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(montecarloCmd)
	montecarloCmd.Flags().IntVar(&runs, "runs", 10, "number of seeds")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the stress population size",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntSliceVar(&sizes, "sizes", []int{250, 500, 1000, 2000}, "population sizes")
	sweepCmd.Flags().IntVar(&runs, "runs", 4, "seeds per size")

	planCmd := &cobra.Command{
		Use:   "plan [file]",
		Short: "run a scripted plan of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time octree against brute-force collision detection",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{500, 1000, 2000, 5000}, "population sizes")
	benchCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population and collisions of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the sampled series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the final population and population curves to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", ".", "output directory")
	svgCmd.Flags().StringVar(&theme, "theme", "orbit", "color theme")

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "list recorded collision events of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  listEvents,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios and integrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			fmt.Println("scenarios:")
			for _, name := range registry.ListScenarios() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("integrators:")
			for _, name := range registry.ListIntegrators() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, montecarloCmd, sweepCmd, planCmd, benchCmd,
		listCmd, plotCmd, exportJSONCmd, exportCSVCmd, svgCmd, eventsCmd, presetsCmd, scenariosCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "speed multiplier for real-time views")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&objects, "objects", config.DefaultObjects, "population size for random scenarios")
	cmd.Flags().StringVar(&integrator, "integrator", "symplectic_euler", "integrator")
	cmd.Flags().StringVar(&catalog, "catalog", "", "YAML catalog for the catalog scenario")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers the defaults, the preset, the config file, KESSLER_*
// environment variables and finally the flags the user actually set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	base := config.DefaultConfig()
	if len(args) > 0 {
		base.Scenario = args[0]
	}
	if preset != "" {
		p := config.GetPreset(base.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(base.Scenario))
		}
		base.Apply(p)
	}

	cfg, err := config.LoadLayeredOver(base, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("objects") {
		cfg.Objects = objects
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("catalog") {
		cfg.Catalog = catalog
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}
