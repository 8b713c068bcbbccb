package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir    string
	verbose    int
	configFile string
	preset     string
	seed       int64
	ticks      int
	dt         float64
	fps        int
	radius     float64
	theme      string
	sqlitePath string
	every      int
	runs       int
	noSave     bool
	jsonOut    bool
	outFile    string
	svgWidth   int
	svgHeight  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "2d gravitational n-body sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity (0-2)")

	scenarioFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
		cmd.Flags().Int64Var(&seed, "seed", 1, "colour seed")
		cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "delta time per tick, in target frames")
	}
	scenarioFlags(rootCmd)
	rootCmd.Flags().IntVar(&fps, "fps", 60, "target frame rate")
	rootCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "radius of bodies added with the mouse")
	rootCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "colour theme")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "record every frame into a new sqlite database")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "open the interactive sandbox",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&fps, "fps", 60, "target frame rate")
	liveCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "radius of bodies added with the mouse")
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "colour theme")
	liveCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "record every frame into a new sqlite database")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario headless and store the result",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	runCmd.Flags().IntVar(&every, "every", 1, "record every n-th tick")
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of ensemble members (different colour seeds)")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also record frames into a new sqlite database")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write a run directory")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as json")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput for growing body counts",
		Args:  cobra.NoArgs,
		RunE:  benchStep,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 500, "ticks per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the body trajectories of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "svg width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 600, "svg height")

	rootCmd.AddCommand(liveCmd, runCmd, benchCmd, presetsCmd, listCmd, plotCmd, svgCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbose, LogTimestamp: true})
}

// loadConfig resolves the scenario from --config or --preset and applies
// explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return nil, errors.New("use either --config or --preset")
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	return cfg, cfg.Validate()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	s, err := cfg.NewSimulation(sim.WithLogger(log.WithName("sim")))
	if err != nil {
		return err
	}

	set := metrics.NewSet(300, metrics.Standard()...)
	opts := []viz.Option{
		viz.WithRadius(cfg.Radius),
		viz.WithTheme(theme),
	}
	if sqlitePath != "" {
		rec, err := storage.OpenSQLite(sqlitePath, log.WithName("sqlite"))
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Error(err, "closing sqlite recorder")
			}
		}()
		opts = append(opts, viz.WithObservers(rec))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return viz.Run(ctx, s, set, cfg.FPS, log, opts...)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runs > 1 {
		return runEnsemble(ctx, cfg, log)
	}

	s, err := cfg.NewSimulation(sim.WithLogger(log.WithName("sim")))
	if err != nil {
		return err
	}

	set := metrics.NewSet(0, metrics.Standard()...)
	rec := storage.NewRecorder(every)
	observers := []sim.Observer{set, rec}

	if sqlitePath != "" {
		db, err := storage.OpenSQLite(sqlitePath, log.WithName("sqlite"))
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error(err, "closing sqlite recorder")
			}
		}()
		observers = append(observers, db)
	}

	start := time.Now()
	runErr := s.Run(ctx, cfg.Ticks, cfg.Dt, observers...)
	elapsed := time.Since(start)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}
		var bodyErr *sim.BodyError
		if !errors.As(runErr, &bodyErr) {
			return runErr
		}
		log.Info("some body updates were rolled back", "first", bodyErr.Error())
	}

	meta := storage.RunMetadata{
		Scenario: cfg.Name,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Ticks:    cfg.Ticks,
		Bodies:   s.Len(),
		Metrics:  set.Values(),
	}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, meta, rec.Frames())
	}

	fmt.Printf("ticks: %d in %v\n", cfg.Ticks, elapsed.Round(time.Millisecond))
	printMetrics(set)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, rec.Frames())
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, log logr.Logger) error {
	e := sim.NewEnsemble(cfg.SimParams(), cfg.SimSettings(), runs, cfg.Seed, sim.WithLogger(log.WithName("sim")))
	snaps, err := e.Run(ctx, cfg.Ticks, cfg.Dt, cfg.Populate)
	if err != nil {
		var bodyErr *sim.BodyError
		if !errors.As(err, &bodyErr) {
			return err
		}
		log.Info("some body updates were rolled back", "first", bodyErr.Error())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBODIES\tKINETIC\tPOTENTIAL\tMOMENTUM")
	for i, snap := range snaps {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4f\n",
			cfg.Seed+int64(i),
			len(snap.Bodies),
			metrics.Kinetic(snap),
			metrics.Potential(snap),
			metrics.TotalMomentum(snap).Magnitude(),
		)
	}
	return w.Flush()
}

func printMetrics(set *metrics.Set) {
	values := set.Values()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range set.Names() {
		fmt.Fprintf(w, "%s\t%.6f\n", name, values[name])
	}
	w.Flush()
}

func benchStep(cmd *cobra.Command, args []string) error {
	counts := []int{5, 10, 25, 50, 100}

	fmt.Printf("benchmarking %d ticks per body count\n\n", ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tTICKS\tTIME\tTICKS/SEC\tPAIRS/SEC")

	for _, n := range counts {
		params := sim.DefaultParams()
		params.BodyLimit = 0
		s := sim.New(params, sim.DefaultSettings())
		for i := 0; i < n; i++ {
			theta := 2 * math.Pi * float64(i) / float64(n)
			pos := geom.Position{X: 500 + 300*math.Cos(theta), Y: 400 + 300*math.Sin(theta)}
			if _, err := s.AddBody(5, pos, geom.FromPolar(0.5, theta+math.Pi/2)); err != nil {
				return err
			}
		}

		start := time.Now()
		if err := s.Run(cmd.Context(), ticks, 1); err != nil {
			return err
		}
		elapsed := time.Since(start)

		ticksPerSec := float64(ticks) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.0f\n",
			n, ticks, elapsed.Round(time.Microsecond), ticksPerSec, ticksPerSec*float64(n*(n-1)))
	}

	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		return config.Write(os.Stdout, cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tTRACE\tTAPER")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\n", name, len(cfg.Bodies), cfg.Settings.Trace, cfg.Settings.Taper)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tTICKS\tDT\tBODIES\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Dt,
			run.Bodies,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	var energy []float64
	var tick uint64
	for i, f := range frames {
		if i == 0 || f.Tick != tick {
			energy = append(energy, 0)
			tick = f.Tick
		}
		energy[len(energy)-1] += 0.5 * f.Radius * f.Radius * (f.VX*f.VX + f.VY*f.VY)
	}
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()

	const maxSeries = 6
	var xs [][]float64
	for _, t := range storage.Trajectories(frames) {
		if len(xs) == maxSeries {
			break
		}
		series := make([]float64, len(t))
		for i, f := range t {
			series[i] = f.X
		}
		xs = append(xs, series)
	}
	fmt.Println(asciigraph.PlotMany(xs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("x position per body"),
	))

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	svg := export.PathsToSVG(export.FrameTracks(frames), svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("no data to export")
	}
	if outFile == "" {
		_, err := fmt.Println(svg)
		return err
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}
