package main

import (
	"fmt"
	"strings"
	"testing"

	"vidingest/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	lines := dependencyLines([]deps.Status{
		{Name: "FFmpeg", Available: false, Detail: `binary "ffmpeg" not found`},
		{Name: "FFprobe", Available: false, Optional: true},
	}, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR]") || !strings.Contains(lines[1], "[WARN]") {
		t.Fatalf("unexpected severities %v", lines)
	}
	if !strings.Contains(lines[2], "Missing dependencies") || strings.Contains(lines[2], "FFprobe") {
		t.Fatalf("optional deps must not be listed as missing: %q", lines[2])
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{0: "0:00", 40: "0:40", 61.4: "1:01", 3725: "1:02:05"}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	if got := humanBytes(512); got != "512 B" {
		t.Fatalf("got %q", got)
	}
	if got := humanBytes(3 * 1024 * 1024); got != "3.0 MiB" {
		t.Fatalf("got %q", got)
	}
}
