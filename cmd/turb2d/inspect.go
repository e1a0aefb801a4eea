package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/turb2d/internal/analysis"
	"github.com/san-kum/turb2d/internal/config"
	"github.com/san-kum/turb2d/internal/spectral"
	"github.com/san-kum/turb2d/internal/storage"
	"github.com/san-kum/turb2d/internal/viz"
)

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
	fmt.Fprintln(w, "ID\tCREATED\tN\tKF\tSTEPPER\tT\tITERS\tSTATUS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%.3f\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Resolution,
			run.Kf,
			run.Timestepper,
			run.SimTime,
			run.Iterations,
			run.Status,
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
	scalars, err := st.LoadScalars(runID)
	if err != nil {
		return err
	}

	ser, ok := scalars[task]
	if !ok || ser.Len() == 0 {
		names := make([]string, 0, len(scalars))
		for n := range scalars {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("no samples for %q (available: %v)", task, names)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", ser.Len())

	data, caption := ser.Value, fmt.Sprintf("%s vs time", task)
	if power {
		data, caption = analysis.PowerSpectrum(ser.Value), fmt.Sprintf("power spectrum (%s)", task)
		if len(data) == 0 {
			return fmt.Errorf("need at least two samples for a power spectrum")
		}
	}
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))

	sum := analysis.Summarize(ser.Time, ser.Value, from)
	fmt.Printf("\nt >= %g: %d samples, mean %.6e, std %.3e, range [%.6e, %.6e]\n",
		sum.From, sum.Samples, sum.Mean, sum.Std, sum.Min, sum.Max)

	if pngPath != "" {
		if err := viz.SaveSeries(fmt.Sprintf("%s (%s)", task, meta.ID), task, ser.Time, ser.Value, pngPath); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", pngPath)
	}
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.OpenSnapshots(runID)
	if err != nil {
		return err
	}
	defer snaps.Close()

	frames, err := snaps.Frames("vorticity")
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return storage.ErrNoFrames
	}
	idx := frameIdx
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (%d frames)", frameIdx, len(frames))
	}
	fr := frames[idx]

	s, err := analysis.SpectraFromGrid(fr.Values, fr.Size, meta.Length)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s  t=%.4f  iteration=%d\n", meta.ID, fr.Time, fr.Iteration)
	fmt.Printf("E=%.6e  Z=%.6e  peak k=%g\n\n", s.TotalEnergy(), s.TotalEnstrophy(), s.Peak())

	logE := make([]float64, 0, len(s.E))
	for n := 1; n < len(s.E); n++ {
		if s.E[n] > 0 {
			logE = append(logE, math.Log10(s.E[n]))
		}
	}
	if len(logE) > 1 {
		fmt.Println(asciigraph.Plot(logE, asciigraph.Height(12), asciigraph.Width(80), asciigraph.Caption("log10 E(k)")))
	}

	if pngPath != "" {
		title := fmt.Sprintf("spectrum t=%.3f", fr.Time)
		if err := viz.SaveSpectrum(s, title, pngPath); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", pngPath)
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.OpenSnapshots(runID)
	if err != nil {
		return err
	}
	defer snaps.Close()

	frames, err := snaps.Frames(task)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNoFrames, task)
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Join(dataDir, runID, "frames")
	}
	for _, fr := range frames {
		p := &spectral.PhysicalField{Size: fr.Size, L: meta.Length, Data: fr.Values}
		path := filepath.Join(dir, fmt.Sprintf("%s_%06d.png", task, fr.Iteration))
		if err := viz.SaveHeatmap(p, fmt.Sprintf("%s t=%.3f", task, fr.Time), path); err != nil {
			return err
		}
	}
	fmt.Printf("rendered %d frames to %s\n", len(frames), dir)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return st.ExportJSON(w, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}
