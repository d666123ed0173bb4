package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/schrodsim/internal/analysis"
	"github.com/san-kum/schrodsim/internal/automation"
	"github.com/san-kum/schrodsim/internal/config"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/export"
	"github.com/san-kum/schrodsim/internal/metrics"
	"github.com/san-kum/schrodsim/internal/optim"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/storage"
	"github.com/san-kum/schrodsim/internal/store"
	"github.com/san-kum/schrodsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	scheme string
	xMin   float64
	xMax   float64
	xStep  float64
	eMin   float64
	eMax   float64
	eStep  float64

	psiPrecision      float64
	intervalPrecision float64
	maxIterations     int
	dedupTolerance    float64

	save      bool
	plotWidth int
	plotRows  int
	showPlots bool

	energy    float64
	stateIdx  int
	outFile   string
	chartScan bool
	chartW    float64
	chartH    float64

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	tuneVary   []string
	tuneMetric string
)

var logger = slog.Default()

func main() {
	rootCmd := &cobra.Command{
		Use:   "schrodsim",
		Short: "1D Schrödinger eigenstate finder (shooting method)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".schrodsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	solveCmd := &cobra.Command{
		Use:   "solve [potential]",
		Short: "find bound states of a potential",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solve,
	}
	addCalcFlags(solveCmd)
	solveCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	solveCmd.Flags().BoolVar(&showPlots, "plot", false, "plot V(x) and each wavefunction")

	scanCmd := &cobra.Command{
		Use:   "scan [potential]",
		Short: "plot the far-boundary value over the energy sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  scan,
	}
	addCalcFlags(scanCmd)

	shootCmd := &cobra.Command{
		Use:   "shoot [potential]",
		Short: "integrate once at a fixed energy",
		Args:  cobra.MaximumNArgs(1),
		RunE:  shoot,
	}
	addCalcFlags(shootCmd)
	shootCmd.Flags().Float64Var(&energy, "energy", 1, "trial energy")

	compareCmd := &cobra.Command{
		Use:   "compare [potential] [scheme1] [scheme2] ...",
		Short: "compare integration schemes on the same potential",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareSchemes,
	}
	addCalcFlags(compareCmd)

	potentialsCmd := &cobra.Command{
		Use:   "potentials",
		Short: "list available potentials",
		Args:  cobra.NoArgs,
		RunE:  listPotentials,
	}

	potentialCmd := &cobra.Command{
		Use:   "potential [potential]",
		Short: "plot a potential profile",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotPotential,
	}
	addCalcFlags(potentialCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [potential]",
		Short: "list available presets for a potential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := potential.Parse(args[0]).Name()
			presets := config.ListPresets(name)
			if len(presets) == 0 {
				fmt.Printf("no presets for potential: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", name)
			for _, p := range presets {
				cfg := config.GetPreset(name, p)
				fmt.Printf("  %-8s E %g..%g step %g\n", p, cfg.Search.EMin, cfg.Search.EMax, cfg.Search.EStep)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&stateIdx, "state", -1, "plot one eigenstate")
	addPlotFlags(showCmd)

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a saved run as PNG, SVG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outFile, "output", "o", "levels.png", "output file; the extension picks the format")
	chartCmd.Flags().BoolVar(&chartScan, "scan", false, "chart the energy sweep instead of the levels")
	chartCmd.Flags().Float64Var(&chartW, "width", 8, "width in inches")
	chartCmd.Flags().Float64Var(&chartH, "height", 5, "height in inches")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [potential]",
		Short: "repeat a calculation while varying one grid parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runParamSweep,
	}
	addCalcFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "x_max", "grid parameter (x_min, x_max, x_step)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 15, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [potential]",
		Short: "grid-search calculation parameters for the lowest metric value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tune,
	}
	addCalcFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneVary, "vary", []string{"x_step=0.05,0.02,0.01"}, "parameter and values, e.g. x_step=0.05,0.01 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_residual", "metric to minimize")

	tuiCmd := &cobra.Command{
		Use:   "tui [potential]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	addCalcFlags(tuiCmd)
	addCalcFlags(rootCmd)

	rootCmd.AddCommand(solveCmd, scanCmd, shootCmd, compareCmd, potentialsCmd, potentialCmd, presetsCmd,
		listCmd, showCmd, exportJSONCmd, exportCSVCmd, chartCmd, batchCmd, sweepCmd, tuneCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCalcFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&scheme, "scheme", config.DefaultScheme, "integration scheme (euler, rk4, verlet)")
	f.Float64Var(&xMin, "x-min", config.DefaultXMin, "grid start")
	f.Float64Var(&xMax, "x-max", config.DefaultXMax, "grid end")
	f.Float64Var(&xStep, "x-step", config.DefaultXStep, "grid spacing")
	f.Float64Var(&eMin, "e-min", config.DefaultEMin, "lowest sweep energy")
	f.Float64Var(&eMax, "e-max", config.DefaultEMax, "highest sweep energy")
	f.Float64Var(&eStep, "e-step", config.DefaultEStep, "sweep step")
	f.Float64Var(&psiPrecision, "psi-precision", eigen.DefaultPsiPrecision, "boundary residual tolerance")
	f.Float64Var(&intervalPrecision, "interval-precision", eigen.DefaultIntervalPrecision, "bracket width tolerance")
	f.IntVar(&maxIterations, "max-iterations", eigen.DefaultMaxIterations, "refinement iteration cap")
	f.Float64Var(&dedupTolerance, "dedup", eigen.DefaultDedupTolerance, "minimum spacing between accepted energies")
	addPlotFlags(cmd)
}

func addPlotFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("width") != nil {
		return
	}
	cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	cmd.Flags().IntVar(&plotRows, "rows", 12, "plot height")
}

func setupLogger() error {
	level, err := config.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig layers preset, config file, positional potential and explicit
// flags, in that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Potential = potential.Parse(args[0]).Name()
	}

	if preset != "" {
		p := config.GetPreset(cfg.Potential, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Potential))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Potential = cfg.Potential
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("scheme") {
		cfg.Scheme = scheme
	}
	if flags.Changed("x-min") {
		cfg.Grid.XMin = xMin
	}
	if flags.Changed("x-max") {
		cfg.Grid.XMax = xMax
	}
	if flags.Changed("x-step") {
		cfg.Grid.Step = xStep
	}
	if flags.Changed("e-min") {
		cfg.Search.EMin = eMin
	}
	if flags.Changed("e-max") {
		cfg.Search.EMax = eMax
	}
	if flags.Changed("e-step") {
		cfg.Search.EStep = eStep
	}
	if flags.Changed("psi-precision") {
		cfg.Tolerances.PsiPrecision = psiPrecision
	}
	if flags.Changed("interval-precision") {
		cfg.Tolerances.IntervalPrecision = intervalPrecision
	}
	if flags.Changed("max-iterations") {
		cfg.Tolerances.MaxIterations = maxIterations
	}
	if flags.Changed("dedup") {
		cfg.Tolerances.DedupTolerance = dedupTolerance
	}
	if configFile != "" && !flags.Changed("log-level") {
		if level, err := config.ParseLevel(cfg.LogLevel); err == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		}
	}

	return cfg, cfg.Validate()
}

func loadRequest(cmd *cobra.Command, args []string) (experiment.Request, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return experiment.Request{}, err
	}
	return experiment.RequestFromConfig(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func buildProfile(shape potential.Shape, grid potential.Grid) (*potential.Profile, error) {
	resolved, ok := potential.Resolve(shape)
	if !ok {
		logger.Warn("unknown potential, falling back", "requested", shape.Name(), "using", resolved.Name())
	}
	return potential.Build(resolved, grid)
}

func solve(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	exp := experiment.New(req, logger)
	ms := metrics.Defaults()
	for _, m := range ms {
		exp.AddObserver(m)
	}

	fmt.Printf("searching %s with %s, E %g..%g step %g\n",
		req.Shape.Name(), req.Scheme, req.Sweep.EMin, req.Sweep.EMax, req.Sweep.EStep)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	if len(result.Solutions) == 0 {
		fmt.Println("no bound states in range")
	} else {
		st := store.New()
		st.Replace(result)
		if err := printStates(os.Stdout, st); err != nil {
			return err
		}
	}
	fmt.Printf("\ncompleted in %v\n", result.Elapsed)

	fmt.Println("\nmetrics:")
	for _, m := range ms {
		fmt.Printf("  %s: %.6g\n", m.Name(), m.Value())
	}

	if showPlots {
		printPlots(result)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

// printStates writes the eigenstate table of the result held by st. Rows
// whose residual exceeds the psi precision are flagged with '*'.
func printStates(out io.Writer, st *store.Store) error {
	r := st.Snapshot()
	if r == nil {
		return store.ErrEmpty
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tENERGY\tRESIDUAL\tITER\tCONVERGED\tNODES\t<x>\tΔx")
	flagged := 0
	for i, s := range r.Solutions {
		mean, width, err := analysis.Spread(r.X, s.Wavefunction)
		if err != nil {
			return fmt.Errorf("state %d: %w", i, err)
		}
		mark := ""
		if !s.WithinTolerance(r.Options.PsiPrecision) {
			mark = "*"
			flagged++
		}
		fmt.Fprintf(w, "%d\t%.6f\t%.2e%s\t%d\t%v\t%d\t%.4f\t%.4f\n",
			i, s.Energy, s.BoundaryResidual, mark, s.Iterations, s.Converged,
			analysis.CountNodes(s.Wavefunction), mean, width)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if flagged > 0 {
		fmt.Fprintf(out, "* |ψ(x_max)| above %g (%d of %d states)\n", r.Options.PsiPrecision, flagged, len(r.Solutions))
	}

	if states := st.Wavefunctions(); len(states) > 1 {
		overlap, err := analysis.OverlapMatrix(st.X(), states)
		if err != nil {
			return err
		}
		worst := 0.0
		n := overlap.SymmetricDim()
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				worst = max(worst, math.Abs(overlap.At(i, j)))
			}
		}
		fmt.Fprintf(out, "\nmax |<ψi|ψj>|, i≠j: %.2e\n", worst)
	}
	return nil
}

func printPlots(r *store.Result) {
	ceiling := r.Sweep.EMax
	for _, e := range r.Energies() {
		ceiling = max(ceiling, e)
	}
	v := viz.ClipCurve(store.Curve{Label: "V(x)", X: r.X, Y: r.Potential}, -ceiling*2, ceiling*2)
	fmt.Println()
	fmt.Println(viz.PlotCurve(v, plotWidth, plotRows))
	for _, s := range r.Solutions {
		fmt.Println()
		fmt.Println(viz.PlotCurve(store.Curve{Label: "E = " + s.Label(), X: r.X, Y: s.Wavefunction}, plotWidth, plotRows))
	}
}

func scan(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	profile, err := buildProfile(req.Shape, req.Grid)
	if err != nil {
		return err
	}
	points, err := eigen.NewSearcher(req.Options, logger).Scan(ctx, shooting.NewShooter(profile, req.Scheme), req.Sweep)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %s, %d energies\n\n", profile.Shape.Name(), req.Scheme, len(points))
	fmt.Println(viz.PlotScan(points, plotWidth, plotRows))

	changes := 0
	for i := 1; i < len(points); i++ {
		if points[i-1].Boundary*points[i].Boundary < 0 {
			changes++
		}
	}
	fmt.Printf("\nsign changes: %d\n", changes)
	return nil
}

func shoot(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args)
	if err != nil {
		return err
	}
	profile, err := buildProfile(req.Shape, req.Grid)
	if err != nil {
		return err
	}
	traj, err := shooting.Integrate(profile, energy, req.Scheme)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %s, E = %g\n", profile.Shape.Name(), req.Scheme, energy)
	fmt.Printf("ψ(x_max) = %.6e\n", traj.Boundary)
	fmt.Printf("nodes:     %d\n\n", analysis.CountNodes(traj.Psi))
	fmt.Println(viz.Overlay(traj.X, profile.V, traj.Psi, plotWidth, plotRows))
	fmt.Println("\nphase portrait (ψ, ψ'):")
	fmt.Println(analysis.NewPhasePortrait(traj).ASCII(plotWidth/2, plotRows))
	return nil
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args[:1])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args[1:]
	if len(names) == 0 {
		names = registry.ListSchemes()
	}
	schemes := make([]shooting.Scheme, len(names))
	for i, name := range names {
		if schemes[i], err = registry.GetScheme(name); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing %d schemes on %s\n\n", len(schemes), req.Shape.Name())
	results, err := experiment.Compare(ctx, req, schemes, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tSTATES\tTIME\tLOWEST")
	for _, c := range results {
		lowest := "-"
		if len(c.Result.Solutions) > 0 {
			lowest = c.Result.Solutions[0].Label()
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", c.Scheme, len(c.Result.Solutions), c.Result.Elapsed, lowest)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) < 2 {
		return nil
	}
	ref := results[0]
	tol := req.Sweep.EStep
	for _, other := range results[1:] {
		fmt.Printf("\n%s vs %s:\n", other.Scheme, ref.Scheme)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "N\t%s\t%s\tΔE\n", strings.ToUpper(ref.Scheme.String()), strings.ToUpper(other.Scheme.String()))
		for i, p := range experiment.Align(ref.Result.Energies(), other.Result.Energies(), tol) {
			if !p.Found {
				fmt.Fprintf(w, "%d\t%.6f\t-\t-\n", i, p.Reference)
				continue
			}
			fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%+.2e\n", i, p.Reference, p.Other, p.Delta())
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func listPotentials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRESETS\tDESCRIPTION")
	for _, name := range experiment.NewRegistry().ListShapes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, strings.Join(config.ListPresets(name), ","), potential.Describe(name))
	}
	return w.Flush()
}

func plotPotential(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	profile, err := buildProfile(cfg.Shape(), cfg.Grid)
	if err != nil {
		return err
	}
	fmt.Printf("%s on [%g, %g], %d samples\n\n", profile.Shape.Name(), profile.Grid.XMin, profile.Grid.XMax, profile.Len())
	fmt.Println(viz.PlotCurve(store.Curve{Label: "V(x)", X: profile.X, Y: profile.V}, plotWidth, plotRows))
	return nil
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
	fmt.Fprintln(w, "ID\tPOTENTIAL\tTIME\tSCHEME\tSWEEP\tSTATES\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g..%g/%g\t%d\t%.0fms\n",
			run.ID,
			run.Shape,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Scheme,
			run.Sweep.EMin, run.Sweep.EMax, run.Sweep.EStep,
			len(run.States),
			run.ElapsedMs,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*store.Result, error) {
	return storage.New(dataDir).LoadResult(runID)
}

func showRun(cmd *cobra.Command, args []string) error {
	result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:       %s\n", args[0])
	fmt.Printf("potential: %s\n", result.Shape)
	fmt.Printf("scheme:    %s\n", result.Scheme)
	fmt.Printf("grid:      [%g, %g] step %g\n\n", result.Grid.XMin, result.Grid.XMax, result.Grid.Step)

	st := store.New()
	st.Replace(result)
	if stateIdx < 0 {
		if len(result.Solutions) == 0 {
			fmt.Println("no bound states in range")
			return nil
		}
		return printStates(os.Stdout, st)
	}

	curve, err := st.SelectEigenstate(stateIdx)
	if err != nil {
		return err
	}
	fmt.Println(viz.PlotCurve(curve, plotWidth, plotRows))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return store.ExportJSONStdout(result)
	}
	if err := store.ExportJSON(outFile, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return store.WriteCSV(os.Stdout, result)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := store.WriteCSV(f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	build := func() error {
		p, err := export.LevelChart(result, export.ChartOptions{})
		if err != nil {
			return err
		}
		return export.Save(p, outFile, vg.Length(chartW)*vg.Inch, vg.Length(chartH)*vg.Inch)
	}
	if chartScan {
		build = func() error {
			p, err := export.ScanChart(result)
			if err != nil {
				return err
			}
			return export.Save(p, outFile, vg.Length(chartW)*vg.Inch, vg.Length(chartH)*vg.Inch)
		}
	}
	if err := build(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	r := &automation.Runner{
		Out:     os.Stdout,
		Storage: st,
		Runner:  experiment.NewRunner(store.New(), logger),
	}
	results, err := r.RunScenario(ctx, scenario)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.RunID != "" {
			fmt.Printf("  saved %s as %s\n", res.Name, res.RunID)
		}
	}
	return nil
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	r := &automation.Runner{Out: os.Stderr, Runner: experiment.NewRunner(store.New(), logger)}
	results, err := r.RunSweep(ctx, &automation.ParameterSweep{
		Request:   req,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTATES\tENERGIES\n", strings.ToUpper(sweepParam))
	for _, res := range results {
		energies := make([]string, len(res.Energies))
		for i, e := range res.Energies {
			energies[i] = strconv.FormatFloat(e, 'f', 4, 64)
		}
		fmt.Fprintf(w, "%.4f\t%d\t%s\n", res.ParamValue, len(res.Energies), strings.Join(energies, " "))
	}
	return w.Flush()
}

func tune(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd, args)
	if err != nil {
		return err
	}

	newMetric, err := metricByName(tuneMetric)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneVary))
	ranges := make([][]float64, 0, len(tuneVary))
	for _, spec := range tuneVary {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --vary %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("invalid value in --vary %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, trials, err := g.Search(ctx, req, newMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTATES\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(tuneMetric))
	for _, t := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(t.Params[n], 'g', -1, 64)
		}
		value := fmt.Sprintf("%.3e", t.Value)
		if t.Err != nil {
			value = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", strings.Join(cols, "\t"), t.States, value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %v (%s = %.3e)\n", best.Params, tuneMetric, best.Value)
	return nil
}

func metricByName(name string) (func() metrics.Metric, error) {
	known := make([]string, 0, 3)
	for i, m := range metrics.Defaults() {
		if m.Name() == name {
			return func() metrics.Metric { return metrics.Defaults()[i] }, nil
		}
		known = append(known, m.Name())
	}
	return nil, fmt.Errorf("unknown metric: %s (available: %v)", name, known)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal; log lines would tear it.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := experiment.NewRunner(store.New(), quiet)
	return viz.RunApp(runner, cfg)
}
