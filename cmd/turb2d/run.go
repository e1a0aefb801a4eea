package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/turb2d/internal/config"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/sim"
	"github.com/san-kum/turb2d/internal/storage"
	"github.com/san-kum/turb2d/internal/sweep"
	"github.com/san-kum/turb2d/internal/viz"
)

// buildConfig layers preset, config file and command-line flags, in that
// order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("resolution") {
		cfg.Domain.Resolution = resolution
	}
	if flags.Changed("epsilon") {
		cfg.Forcing.Epsilon = epsilon
	}
	if flags.Changed("kf") {
		cfg.Forcing.Kf = kf
	}
	if flags.Changed("kfw") {
		cfg.Forcing.Kfw = kfw
	}
	if flags.Changed("seed") {
		cfg.Forcing.Seed = seed
	}
	if flags.Changed("time") {
		cfg.Solver.StopSimTime = stopTime
	}
	if flags.Changed("iterations") {
		cfg.Solver.StopIteration = stopIteration
	}
	if flags.Changed("timestepper") {
		cfg.Solver.Timestepper = timestepper
	}
	if flags.Changed("no-forcing") {
		cfg.Forcing.Enabled = !noForcing
	}
	if flags.Changed("nu") {
		nu := viscosity
		cfg.Physics.Viscosity = &nu
	}
	if flags.Changed("alpha") {
		alpha := friction
		cfg.Physics.Friction = &alpha
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func metadata(cfg *config.Config, sc sim.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Seed:        sc.Forcing.Seed,
		Resolution:  sc.Resolution,
		Length:      sc.Length,
		Epsilon:     cfg.Forcing.Epsilon,
		Kf:          cfg.Forcing.Kf,
		Kfw:         cfg.Forcing.Kfw,
		Viscosity:   sc.Physics.Nu,
		Friction:    sc.Physics.Alpha,
		Timestepper: sc.Timestepper,
		StopTime:    sc.StopTime,
	}
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	id, result, err := storeRun(ctx, cfg, preset)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	printResult(id, result)
	return nil
}

// storeRun resolves cfg, runs it to completion and records it in the data
// directory.
func storeRun(ctx context.Context, cfg *config.Config, presetName string) (string, *dynamo.Result, error) {
	sc, err := cfg.Resolve()
	if err != nil {
		return "", nil, err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", nil, err
	}
	meta := metadata(cfg, sc)
	meta.Preset = presetName
	run, err := st.Create(meta)
	if err != nil {
		return "", nil, err
	}
	if err := config.Save(filepath.Join(run.Dir(), "config.yaml"), cfg); err != nil {
		slog.Warn("could not save run config", "error", err)
	}

	s, err := sim.New(sc, run)
	if err != nil {
		_ = run.Close(nil, err)
		return run.ID(), nil, err
	}

	slog.Info("running", "run", run.ID(), "resolution", sc.Resolution)
	result, runErr := s.Run(ctx)
	if err := run.Close(result, runErr); err != nil {
		return run.ID(), result, err
	}
	return run.ID(), result, runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	sw, err := sweep.Load(args[0])
	if err != nil {
		return err
	}
	base := config.DefaultConfig()
	if sw.Preset != "" {
		if base = config.GetPreset(sw.Preset); base == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", sw.Preset, config.ListPresets())
		}
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("sweep %s: %d points\n", sw.Name, len(sw.Points()))
	results, runErr := sw.Run(ctx, base, func(ctx context.Context, cfg *config.Config, p sweep.Point) (string, *dynamo.Result, error) {
		return storeRun(ctx, cfg, sw.Preset)
	})

	objective := sw.Objective
	if objective == "" {
		objective = "mean_E"
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "POINT\tRUN\t%s\tSTATUS\n", objective)
	for _, r := range results {
		status, value := "ok", "-"
		if r.Err != nil {
			status = r.Err.Error()
		}
		if r.Result != nil {
			if v, ok := r.Result.Metrics[objective]; ok {
				value = fmt.Sprintf("%.6e", v)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Point, r.RunID, value, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := sweep.Best(results, objective); ok {
		fmt.Printf("\nlowest %s: %s (run %s)\n", objective, best.Point, best.RunID)
	}
	return runErr
}

func printResult(id string, r *dynamo.Result) {
	fmt.Printf("run id: %s\n", id)
	fmt.Printf("iterations: %d\n", r.Iterations)
	fmt.Printf("sim time: %.6f\n", r.SimTime)
	fmt.Printf("samples: %d\n", r.Samples)
	if len(r.Metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %.6e\n", name, r.Metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Resolve()
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	// the terminal belongs to the view; solver logs go to a file
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.Create(filepath.Join(dataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	s, err := sim.New(sc, nil)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	title := fmt.Sprintf("turb2d %d² kf=%g", sc.Resolution, cfg.Forcing.Kf)
	result, err := viz.RunLive(ctx, s, title, every)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printResult("(live, not stored)", result)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if members < 1 {
		return fmt.Errorf("members must be positive, got %d", members)
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Resolve()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runs := make([]*storage.Run, members)
	ens := sim.NewEnsemble(sc, members, seedStart, func(member int, seed int64) (dynamo.Sink, error) {
		meta := metadata(cfg, sc)
		meta.Seed = seed
		meta.Preset = preset
		run, err := st.Create(meta)
		if err != nil {
			return nil, err
		}
		runs[member] = run
		return run, nil
	})

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("running %d members at %d²...\n", members, sc.Resolution)
	outcomes, runErr := ens.Run(ctx)
	closeMembers(runs, outcomes)

	for i, m := range outcomes {
		if m.Err != nil || runs[i] == nil {
			continue
		}
		fmt.Printf("\nmember %d (seed %d)\n", i, m.Seed)
		printResult(runs[i].ID(), m.Result)
	}
	return runErr
}

// closeMembers finalises each stored member with its own outcome, so one
// failed realisation does not mark its siblings as failed.
func closeMembers(runs []*storage.Run, outcomes []sim.Member) {
	for i, run := range runs {
		if run == nil {
			continue
		}
		if err := run.Close(outcomes[i].Result, outcomes[i].Err); err != nil {
			slog.Error("close run", "run", run.ID(), "error", err)
		}
	}
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (nu=%.4e, alpha=%.4e, max_dt=%.4e)\n", args[0], cfg.Viscosity(), cfg.Friction(), cfg.MaxDt())
	return nil
}
