package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"text/tabwriter"

	"github.com/san-kum/noisefield/internal/bench"
	"github.com/san-kum/noisefield/internal/config"
	"github.com/san-kum/noisefield/internal/input"
	"github.com/san-kum/noisefield/internal/loop"
	"github.com/san-kum/noisefield/internal/noise"
	"github.com/san-kum/noisefield/internal/storage"
	"github.com/san-kum/noisefield/internal/term"
	"github.com/san-kum/noisefield/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	debugLog   bool
	saveRun    bool

	fps         int
	capacity    int
	precision   int
	refresh     int
	samplerName string
	seed        int64
	octaves     int
	sensitivity float64
	wheelStep   float64
	showHeader  bool

	benchFrames int
	benchWidth  int
	benchHeight int
	benchPlain  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "noisefield",
		Short: "animated 3D noise in the terminal",
		Long:  "Renders a moving slice of 3D Perlin noise as coloured cells. Move the mouse to steer, scroll to change depth speed, q to quit.",
		RunE:  runRender,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".noisefield", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	addFieldFlags(rootCmd)
	addRenderFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the interactive renderer",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addFieldFlags(runCmd)
	addRenderFlags(runCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare naive and cached frame assembly",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addFieldFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchFrames, "frames", 100, "frames per mode")
	benchCmd.Flags().IntVar(&benchWidth, "width", 80, "frame width in cells")
	benchCmd.Flags().IntVar(&benchHeight, "height", 24, "frame height in cells")
	benchCmd.Flags().BoolVar(&benchPlain, "plain", false, "print the report without the live view")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "list saved sessions",
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot a session's frame times",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}

	exportCmd := &cobra.Command{
		Use:   "export [session_id]",
		Short: "export session data as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSession,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("%-8s fps=%d sampler=%s precision=%d velocity=%.3f,%.3f,%.3f\n",
					name, p.FPS, p.Sampler, p.Precision, p.Velocity.X, p.Velocity.Y, p.Velocity.Z)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "noisefield.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, benchCmd, sessionsCmd, plotCmd, exportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&capacity, "cache", config.DefaultCacheCapacity, "noise cache capacity (entries)")
	cmd.Flags().IntVar(&precision, "precision", config.DefaultPrecision, "cache key rounding (decimal places)")
	cmd.Flags().StringVar(&samplerName, "sampler", config.DefaultSampler, "noise sampler")
	cmd.Flags().Int64Var(&seed, "seed", 0, "noise seed")
	cmd.Flags().IntVar(&octaves, "octaves", config.DefaultOctaves, "noise octaves")
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "target frames per second")
	cmd.Flags().IntVar(&refresh, "refresh", config.DefaultRefreshInterval, "frames between terminal size checks")
	cmd.Flags().Float64Var(&sensitivity, "sensitivity", config.DefaultSensitivity, "velocity per cell of mouse movement")
	cmd.Flags().Float64Var(&wheelStep, "wheel-step", config.DefaultWheelStep, "depth velocity per wheel notch")
	cmd.Flags().BoolVar(&showHeader, "header", false, "show the status row")
	cmd.Flags().BoolVar(&debugLog, "debug", false, "write a debug log to logs/")
	cmd.Flags().BoolVar(&saveRun, "save", false, "save the session summary")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("cache") {
		cfg.CacheCapacity = capacity
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("refresh") {
		cfg.RefreshInterval = refresh
	}
	if flags.Changed("sampler") {
		cfg.Sampler = samplerName
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("octaves") {
		cfg.Octaves = octaves
	}
	if flags.Changed("sensitivity") {
		cfg.Sensitivity = sensitivity
	}
	if flags.Changed("wheel-step") {
		cfg.WheelStep = wheelStep
	}
	if flags.Changed("header") {
		cfg.ShowHeader = showHeader
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSampler(cfg *config.Config) (noise.Sampler, error) {
	return noise.NewRegistry().Get(cfg.Sampler, noise.Params{
		Seed:        cfg.Seed,
		Octaves:     cfg.Octaves,
		Persistence: cfg.Persistence,
		Alpha:       cfg.Alpha,
		Beta:        cfg.Beta,
	})
}

func settingsFromConfig(cfg *config.Config) loop.Settings {
	return loop.Settings{
		FPS:             cfg.FPS,
		CacheCapacity:   cfg.CacheCapacity,
		Precision:       cfg.Precision,
		RefreshInterval: cfg.RefreshInterval,
		PacingWindow:    cfg.PacingWindow,
		ReadChunk:       cfg.ReadChunk,
		Origin:          noise.Coord{X: cfg.Origin.X, Y: cfg.Origin.Y, Z: cfg.Origin.Z},
		Velocity:        input.Velocity{X: cfg.Velocity.X, Y: cfg.Velocity.Y, Z: cfg.Velocity.Z},
		Sensitivity:     cfg.Sensitivity,
		WheelStep:       cfg.WheelStep,
		CellScaleX:      cfg.CellScale.X,
		CellScaleY:      cfg.CellScale.Y,
		ShowHeader:      cfg.ShowHeader,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sampler, err := newSampler(cfg)
	if err != nil {
		return err
	}

	logger, logFile, err := setupLogging(logDir, debugLog)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	tty, err := term.Open()
	if err != nil {
		return err
	}
	defer tty.Close()

	defer func() {
		if r := recover(); r != nil {
			term.EmergencyReset(os.Stdout)
			logger.Error("noisefield: panic", "panic", r)
			fmt.Fprintf(os.Stderr, "panic: %v\n\n%s", r, debug.Stack())
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := loop.New(loop.Deps{
		Sampler: sampler,
		Input:   tty,
		Output:  tty,
		Size:    tty.Size,
		Logger:  logger,
	}, settingsFromConfig(cfg))
	if err != nil {
		return err
	}

	sum, runErr := l.Run(ctx)
	if err := tty.Close(); err != nil {
		logger.Warn("noisefield: terminal restore failed", "error", err)
	}

	fmt.Printf("frames: %d  fps: %.1f  cache: %.0f%% of %d lookups\n",
		sum.Frames, sum.FPS, sum.Cache.HitRatio()*100, sum.Cache.Hits+sum.Cache.Misses)
	fmt.Printf("noise range: %.4f .. %.4f\n", sum.Min, sum.Max)

	if saveRun && sum.Frames > 0 {
		st := storage.New(dataDir)
		id, err := st.Save(storage.SessionInfo{
			Sampler:       cfg.Sampler,
			Preset:        preset,
			Seed:          cfg.Seed,
			TargetFPS:     cfg.FPS,
			CacheCapacity: cfg.CacheCapacity,
			Precision:     cfg.Precision,
		}, sum)
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("saved: %s\n", id)
	}
	return runErr
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sampler, err := newSampler(cfg)
	if err != nil {
		return err
	}

	opts := bench.DefaultOptions()
	opts.Frames = benchFrames
	opts.Width = benchWidth
	opts.Height = benchHeight
	opts.CacheCapacity = cfg.CacheCapacity
	opts.Precision = cfg.Precision
	opts.CellScaleX = cfg.CellScale.X
	opts.CellScaleY = cfg.CellScale.Y
	opts.Sampler = sampler

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if benchPlain || !term.IsTerminal(os.Stdout) {
		rep, err := bench.Run(ctx, opts, nil)
		if err != nil {
			return err
		}
		fmt.Println(bench.FormatReport(rep))
		return nil
	}

	_, err = bench.RunWithView(ctx, opts, os.Stdin, os.Stdout)
	return err
}

func listSessions(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	sessions, err := st.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAMPLER\tTIME\tFRAMES\tFPS\tSIZE\tCACHE")

	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%dx%d\t%.0f%%\n",
			s.ID,
			s.Sampler,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Frames,
			s.FPS,
			s.Width,
			s.Height,
			s.Cache.HitRatio*100,
		)
	}

	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("load session %s: %w", args[0], err)
	}
	times, err := st.LoadFrameTimes(args[0])
	if err != nil {
		return fmt.Errorf("load frame times: %w", err)
	}

	fmt.Println(viz.SessionReport(*meta, times))
	return nil
}

func exportSession(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.Export(os.Stdout, filepath.Base(args[0]))
}
