package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/turb2d/internal/config"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/sim"
	"github.com/san-kum/turb2d/internal/storage"
)

func newConfigCmd(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	return cmd
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, err := buildConfig(newConfigCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Domain.Resolution != config.DefaultResolution || cfg.Forcing.Kf != config.DefaultKf {
		t.Errorf("unexpected defaults %+v", cfg.Domain)
	}
}

func TestBuildConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	data := []byte("domain:\n  resolution: 96\nforcing:\n  kf: 12\n  epsilon: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newConfigCmd(t)
	for flag, value := range map[string]string{
		"preset":      "quick",
		"config":      path,
		"kf":          "8",
		"no-forcing":  "true",
		"nu":          "0.001",
		"timestepper": "RK222",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Domain.Resolution != 96 {
		t.Errorf("file should override preset resolution, got %d", cfg.Domain.Resolution)
	}
	if cfg.Forcing.Epsilon != 0.5 || cfg.Forcing.Kf != 8 {
		t.Errorf("forcing = %+v", cfg.Forcing)
	}
	if cfg.Solver.StopSimTime != 1 {
		t.Errorf("preset stop time lost: %v", cfg.Solver.StopSimTime)
	}
	if cfg.Forcing.Enabled || cfg.Solver.Timestepper != "RK222" || cfg.Viscosity() != 0.001 {
		t.Errorf("flag overrides not applied")
	}
}

func TestBuildConfig_Errors(t *testing.T) {
	cmd := newConfigCmd(t)
	_ = cmd.Flags().Set("preset", "nope")
	if _, err := buildConfig(cmd); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newConfigCmd(t)
	_ = cmd.Flags().Set("resolution", "7")
	if _, err := buildConfig(cmd); err == nil {
		t.Error("expected validation error for odd resolution")
	}
}

func TestCloseMembers_OwnStatus(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs := make([]*storage.Run, 3)
	for i := range runs {
		run, err := st.Create(storage.RunMetadata{ID: fmt.Sprintf("member%d", i), Seed: int64(i)})
		if err != nil {
			t.Fatal(err)
		}
		runs[i] = run
	}

	done := &dynamo.Result{Iterations: 12, SimTime: 0.5}
	outcomes := []sim.Member{
		{Seed: 0, Result: done},
		{Seed: 1, Err: errors.New("blew up")},
		{Seed: 2, Result: done},
	}
	closeMembers(runs, outcomes)

	for i, run := range runs {
		meta, err := st.Load(run.ID())
		if err != nil {
			t.Fatal(err)
		}
		if i == 1 {
			if !strings.HasPrefix(meta.Status, "failed: ") || !strings.Contains(meta.Status, "blew up") {
				t.Errorf("member 1 status = %q", meta.Status)
			}
			continue
		}
		if meta.Status != "completed" || meta.Iterations != 12 {
			t.Errorf("member %d status = %q, iterations = %d", i, meta.Status, meta.Iterations)
		}
	}
}
