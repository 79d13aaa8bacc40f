package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/hanoisim/internal/automation"
	"github.com/san-kum/hanoisim/internal/config"
	"github.com/san-kum/hanoisim/internal/export"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/logging"
	"github.com/san-kum/hanoisim/internal/metrics"
	"github.com/san-kum/hanoisim/internal/player"
	"github.com/san-kum/hanoisim/internal/server"
	"github.com/san-kum/hanoisim/internal/session"
	"github.com/san-kum/hanoisim/internal/storage"
	"github.com/san-kum/hanoisim/internal/tui"
	"github.com/san-kum/hanoisim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	theme      string
	// solve
	animate   bool
	save      bool
	showBoard bool
	cols      int
	// svg
	step       int
	trajectory bool
	outFile    string
	// serve
	addr string
	// show
	asJSON bool
	// sweep
	sweepFrom int
	sweepTo   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hanoisim",
		Short: "animated towers of hanoi solver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "tui color theme")

	playCmd := &cobra.Command{
		Use:   "play [disks]",
		Short: "open the interactive solver with a disk count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, n, err := configWithDisks(cmd, args[0])
			if err != nil {
				return err
			}
			cfg.Disks = n
			return runTUI(cfg)
		},
	}

	solveCmd := &cobra.Command{
		Use:   "solve [disks]",
		Short: "print the move sequence, optionally animated",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().BoolVar(&animate, "animate", false, "animate the solve in the terminal")
	solveCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	solveCmd.Flags().BoolVar(&showBoard, "board", false, "draw the board after every move")
	solveCmd.Flags().IntVar(&cols, "cols", tui.DefaultWidth, "board width in terminal columns")

	plotCmd := &cobra.Command{
		Use:   "plot [disks]",
		Short: "plot which disk moves at each step",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [disks]",
		Short: "render the board after a number of steps as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  runSVG,
	}
	svgCmd.Flags().IntVar(&step, "step", 0, "number of moves applied before drawing")
	svgCmd.Flags().BoolVar(&trajectory, "trajectory", false, "draw the path of move --step instead")
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the browser version",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	showCmd.Flags().StringVarP(&outFile, "output", "o", "", "write the JSON to a file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDISKS\tMOVE\tSETTLE")
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%v\t%v\n", name, p.Disks, p.Duration, p.Settle)
			}
			return w.Flush()
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the solves listed in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve a range of disk counts and compare totals",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepFrom, "from", hanoi.MinDisks, "smallest disk count")
	sweepCmd.Flags().IntVar(&sweepTo, "to", hanoi.MaxDisks, "largest disk count")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "hanoisim.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(playCmd, solveCmd, plotCmd, svgCmd, serveCmd, listCmd, showCmd, batchCmd, sweepCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, a preset and explicit flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(cfg)
	}
	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") || configFile == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("theme") || configFile == "" {
		cfg.Theme = theme
	}
	if f := flags.Lookup("addr"); f != nil && (f.Changed || configFile == "") {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func configWithDisks(cmd *cobra.Command, arg string) (*config.Config, int, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	n, err := hanoi.ParseDisks(arg)
	if err != nil {
		return nil, 0, err
	}
	return cfg, n, nil
}

// newLogger writes to --log-file when given. Without one, interactive views
// stay silent and everything else logs to stderr.
func newLogger(interactive bool) (logging.Logger, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		return logging.NewLogger(f, "hanoisim"), func() { f.Close() }, nil
	}
	if interactive {
		return logging.Nop(), func() {}, nil
	}
	return logging.NewDefaultLogger(), func() {}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cfg *config.Config) error {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	p := tea.NewProgram(viz.NewModel(cfg, logger), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, n, err := configWithDisks(cmd, args[0])
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(animate)
	if err != nil {
		return err
	}
	defer closeLog()

	r := tui.NewTextRenderer(os.Stdout, cfg.Layout,
		tui.WithLive(animate),
		tui.WithWidth(cols),
		tui.WithFPS(cfg.FPS),
		tui.WithFrames(showBoard),
	)
	timing := cfg.PlayerTiming()
	p := player.New(r,
		player.WithLayout(cfg.Layout),
		player.WithTiming(timing),
		player.WithWait(r.Wait),
		player.WithLogger(logger),
		player.WithMetrics(
			metrics.NewMoveCount(),
			metrics.NewDiskMoves("largest_disk_moves", n),
			metrics.NewTravelDistance(),
			metrics.NewLiftDistance(),
		),
	)

	ctx, stop := signalContext()
	defer stop()
	if animate {
		r.Start()
		defer r.Stop()
	}

	result, runErr := p.Run(ctx, n)
	if result == nil {
		return runErr
	}
	fmt.Printf("\n%d of %d moves, solved: %v, elapsed: %v\n", len(result.Moves), hanoi.TotalMoves(n), result.Solved, result.Elapsed.Round(time.Millisecond))
	for _, name := range []string{"moves", "largest_disk_moves", "travel_distance", "lift_distance"} {
		fmt.Printf("  %s: %.0f\n", name, result.Metrics[name])
	}

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save("cli", timing, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if result.Canceled {
		return nil
	}
	return runErr
}

// replay applies the canonical solve without pacing and hands every step to
// fn until it returns false.
func replay(cfg *config.Config, n int, fn func(s *session.Session, st session.Step) bool) (*session.Session, error) {
	s := session.New(n, cfg.Layout)
	for m := range hanoi.Solve(n, hanoi.Source, hanoi.Auxiliary, hanoi.Target) {
		st, err := s.Apply(m)
		if err != nil {
			return nil, err
		}
		if !fn(s, st) {
			break
		}
	}
	return s, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, n, err := configWithDisks(cmd, args[0])
	if err != nil {
		return err
	}

	ranks := make([]float64, 0, hanoi.TotalMoves(n))
	lift := metrics.NewLiftDistance()
	lifts := make([]float64, 0, hanoi.TotalMoves(n))
	if _, err := replay(cfg, n, func(_ *session.Session, st session.Step) bool {
		ranks = append(ranks, float64(st.Move.Disk))
		lift.Observe(st)
		lifts = append(lifts, lift.Value())
		return true
	}); err != nil {
		return err
	}
	if len(ranks) < 2 {
		ranks = append(ranks, ranks...)
		lifts = append(lifts, lifts...)
	}

	fmt.Printf("disks: %d\nmoves: %d\n\n", n, hanoi.TotalMoves(n))
	fmt.Println(asciigraph.Plot(ranks, asciigraph.Height(n), asciigraph.Width(70), asciigraph.Caption("disk moved per step")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(lifts, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("cumulative lift distance (px)")))
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, n, err := configWithDisks(cmd, args[0])
	if err != nil {
		return err
	}
	total := hanoi.TotalMoves(n)
	first := 0
	if trajectory {
		first = 1
	}
	if step < first || step > total {
		return fmt.Errorf("--step must be in [%d, %d]", first, total)
	}

	var out string
	if trajectory {
		prev := session.New(n, cfg.Layout)
		_, err = replay(cfg, n, func(_ *session.Session, st session.Step) bool {
			if st.Index == step {
				out = export.TrajectorySVG(prev.Snapshot(), st, cfg.Layout)
				return false
			}
			_, _ = prev.Apply(st.Move)
			return true
		})
	} else {
		var s *session.Session
		if step == 0 {
			s = session.New(n, cfg.Layout)
		} else {
			s, err = replay(cfg, n, func(_ *session.Session, st session.Step) bool { return st.Index < step })
		}
		if s != nil {
			out = export.BoardSVG(s.Snapshot(), cfg.Layout)
		}
	}
	if err != nil {
		return err
	}

	if outFile == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(out), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signalContext()
	defer stop()
	return server.New(cfg, logger).Run(ctx)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	runner := &automation.Runner{Config: cfg, Store: st, Logger: logger}
	results, err := runner.RunScenario(ctx, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tDISKS\tMOVES\tELAPSED\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%s\n", r.Step, r.Disks, len(r.Result.Moves), r.Result.Elapsed.Round(time.Millisecond), r.RunID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	runner := &automation.Runner{Config: cfg}
	results, err := runner.RunSweep(ctx, sweepFrom, sweepTo)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DISKS\tMOVES\tTRAVEL\tLIFT")
	travel := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%.0f\n", r.Disks, r.Moves, r.Travel, r.Lift)
		travel[i] = r.Travel
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(travel) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(travel, asciigraph.Height(10), asciigraph.Caption("travel distance (px) by disk count")))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISKS\tTIME\tMOVES\tSOLVED\tSOURCE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d/%d\t%v\t%s\n",
			run.ID,
			run.Disks,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Moves,
			hanoi.TotalMoves(run.Disks),
			run.Solved,
			run.Source,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	moves, err := st.LoadMoves(meta.ID)
	if err != nil {
		return err
	}

	if asJSON {
		result := &player.Result{
			Disks:    meta.Disks,
			Moves:    moves,
			Metrics:  meta.Metrics,
			Elapsed:  meta.Elapsed,
			Solved:   meta.Solved,
			Canceled: meta.Canceled,
		}
		timing := player.Timing{Duration: meta.Duration, Settle: meta.Settle}
		if outFile != "" {
			if err := storage.ExportJSON(outFile, timing, result); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outFile)
			return nil
		}
		return storage.WriteJSON(os.Stdout, timing, result)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("disks: %d\n", meta.Disks)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("pace: %v + %v\n", meta.Duration, meta.Settle)
	fmt.Printf("solved: %v (%d of %d moves)\n\n", meta.Solved, len(moves), hanoi.TotalMoves(meta.Disks))
	for i, m := range moves {
		fmt.Println(strconv.Itoa(i+1) + ": " + m.String())
	}
	return nil
}
