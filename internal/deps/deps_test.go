package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidingest/internal/procrun"
	"vidingest/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsUseConfiguredBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = "/opt/ff/ffmpeg"
	reqs := Requirements(cfg)
	if len(reqs) != 2 || reqs[0].Command != "/opt/ff/ffmpeg" || reqs[1].Command != cfg.Tools.FFprobe {
		t.Fatalf("unexpected requirements %#v", reqs)
	}
	if reqs[0].Optional || !reqs[1].Optional {
		t.Fatalf("ffmpeg must be required and ffprobe optional: %#v", reqs)
	}
	if got := Requirements(nil); got[0].Command != "ffmpeg" {
		t.Fatalf("nil config should fall back to PATH names, got %#v", got)
	}
}

func TestProbeVersions(t *testing.T) {
	runner := procrun.Func(func(_ context.Context, name string, args ...string) (procrun.Output, error) {
		if name == "broken" {
			return procrun.Output{}, errors.New("boom")
		}
		return procrun.Output{Stdout: "ffmpeg version 7.1 Copyright\nbuilt with gcc\n"}, nil
	})
	statuses := []Status{
		{Name: "FFmpeg", Command: "ffmpeg", Available: true},
		{Name: "Broken", Command: "broken", Available: true},
		{Name: "Gone", Command: "gone"},
	}
	got := ProbeVersions(context.Background(), runner, statuses)
	if got[0].Version != "ffmpeg version 7.1 Copyright" {
		t.Fatalf("unexpected version %q", got[0].Version)
	}
	if got[1].Version != "" || got[1].Detail == "" {
		t.Fatalf("expected failure detail, got %#v", got[1])
	}
	if got[2].Version != "" {
		t.Fatalf("unavailable binaries must not be probed: %#v", got[2])
	}
	if statuses[0].Version != "" {
		t.Fatal("input slice must not be mutated")
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	missing := Missing([]Status{
		{Name: "a", Available: false},
		{Name: "b", Available: false, Optional: true},
		{Name: "c", Available: true},
	})
	if len(missing) != 1 || missing[0].Name != "a" {
		t.Fatalf("unexpected missing %#v", missing)
	}
}
