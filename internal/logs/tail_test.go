package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidingest/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vidingest.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("expected offset 6, got %d", offset)
	}
}

func TestLastFewerLinesThanLimit(t *testing.T) {
	path := writeLog(t, "only\n")

	lines, _, err := logs.Last(path, 10, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %#v offset %d", lines, offset)
	}
}

func TestLastRejectsDirectory(t *testing.T) {
	if _, _, err := logs.Last(t.TempDir(), 5, logs.Filter{}); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestLastAppliesFilter(t *testing.T) {
	path := writeLog(t, `{"level":"info","component":"ingest","msg":"cache hit"}
{"level":"warn","component":"ingest","msg":"audio unavailable"}
{"level":"info","component":"watch","msg":"watching directory"}
`)

	lines, _, err := logs.Last(path, 10, logs.Filter{MinLevel: "warn"})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one warning line, got %#v", lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Last(path, 1, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, logs.Filter{}, func(line string) error {
			mu.Lock()
			got = append(got, line)
			n := len(got)
			mu.Unlock()
			if n == 2 {
				cancel()
			}
			return nil
		})
	}()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("later\npartial"); err != nil {
		t.Fatalf("append: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := file.WriteString(" line\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	file.Close()

	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "later" || got[1] != "partial line" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}

func TestFollowRestartsAfterTruncate(t *testing.T) {
	path := writeLog(t, "old line one\nold line two\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	var got []string
	err := logs.Follow(ctx, path, 26, 10*time.Millisecond, logs.Filter{}, func(line string) error {
		got = append(got, line)
		cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if len(got) != 1 || got[0] != "fresh" {
		t.Fatalf("unexpected lines: %#v", got)
	}
}

func TestFollowReturnsEmitError(t *testing.T) {
	path := writeLog(t, "line\n")
	stop := errors.New("stop")

	err := logs.Follow(context.Background(), path, 0, 10*time.Millisecond, logs.Filter{}, func(string) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected emit error, got %v", err)
	}
}
