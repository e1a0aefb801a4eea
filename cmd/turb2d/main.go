package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile    string
	preset        string
	resolution    int
	epsilon       float64
	kf            float64
	kfw           float64
	seed          int64
	stopTime      float64
	stopIteration int
	timestepper   string
	noForcing     bool
	viscosity     float64
	friction      float64

	every     int
	theme     string
	members   int
	seedStart int64

	task     string
	from     float64
	pngPath  string
	power    bool
	frameIdx int
	outDir   string
	outFile  string
)

func main() {
	_ = godotenv.Load(".env")

	rootCmd := &cobra.Command{
		Use:   "turb2d",
		Short: "forced-dissipative 2D turbulence solver",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	defaultData := os.Getenv("TURB2D_DATA")
	if defaultData == "" {
		defaultData = ".turb2d"
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory (env TURB2D_DATA)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&every, "every", 5, "iterations between frames")
	liveCmd.Flags().StringVar(&theme, "theme", "ocean", "colour theme")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent realisations concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&members, "members", 4, "number of realisations")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first member")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a scalar diagnostic",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&task, "task", "E", "scalar diagnostic")
	plotCmd.Flags().Float64Var(&from, "from", 0, "start of the statistics window")
	plotCmd.Flags().BoolVar(&power, "power", false, "plot the temporal power spectrum")
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also write a PNG plot")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "energy and enstrophy spectra of a vorticity snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&frameIdx, "frame", -1, "snapshot index, negative counts from the end")
	spectrumCmd.Flags().StringVar(&pngPath, "png", "", "also write a PNG plot")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render snapshots as PNG heatmaps",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&task, "task", "vorticity", "snapshot field")
	renderCmd.Flags().StringVar(&outDir, "out", "", "output directory (default <run>/frames)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and scalars as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [file]",
		Short: "run every point of a YAML parameter grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	addConfigFlags(configCmd)

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, sweepCmd, listCmd, plotCmd, spectrumCmd, renderCmd, exportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.IntVarP(&resolution, "resolution", "n", 0, "grid points per axis")
	f.Float64Var(&epsilon, "epsilon", 0, "energy injection rate")
	f.Float64Var(&kf, "kf", 0, "forcing wavenumber")
	f.Float64Var(&kfw, "kfw", 0, "forcing band width")
	f.Int64Var(&seed, "seed", 0, "forcing seed (0 uses the clock)")
	f.Float64Var(&stopTime, "time", 0, "stop simulation time")
	f.IntVar(&stopIteration, "iterations", 0, "stop iteration")
	f.StringVar(&timestepper, "timestepper", "", "IMEX scheme (RK443, RK222, RK111)")
	f.BoolVar(&noForcing, "no-forcing", false, "disable stochastic forcing")
	f.Float64Var(&viscosity, "nu", 0, "viscosity, overriding the derived value")
	f.Float64Var(&friction, "alpha", 0, "linear friction, overriding the derived value")
}
