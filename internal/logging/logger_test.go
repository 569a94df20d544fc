package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidingest/internal/config"
	"vidingest/internal/logging"
)

func TestNewJSONWritesStructuredRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Outputs: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("cache hit", logging.String(logging.FieldCacheKey, "abc"), logging.Int("segments", 3))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if record["msg"] != "cache hit" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record[logging.FieldCacheKey] != "abc" {
		t.Fatalf("missing cache key: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts field, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleFormatPromotesComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Outputs: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "ingest")
	logger.Debug("hidden")
	logger.Info("segments built", logging.Int("count", 2), logging.String("path", "a b"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record should be filtered at info level: %q", line)
	}
	if !strings.Contains(line, "ingest: segments built") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "count=2") || !strings.Contains(line, `path="a b"`) {
		t.Fatalf("expected formatted attrs, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as attribute: %q", line)
	}
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("probe degraded")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vidingest.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "probe degraded") {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

type captureHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	*h.records = append(*h.records, r)
	return nil
}

func (h captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h captureHandler) WithGroup(string) slog.Handler { return h }

func recordAttrs(r slog.Record) map[string]string {
	out := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var records []slog.Record
	logger := slog.New(captureHandler{records: &records})

	logging.WarnWithContext(logger, "audio extraction failed", "audio_extract_failed",
		logging.String(logging.FieldErrorHint, "install ffmpeg"))

	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	attrs := recordAttrs(records[0])
	if attrs[logging.FieldEventType] != "audio_extract_failed" {
		t.Fatalf("unexpected event type: %v", attrs)
	}
	if attrs[logging.FieldErrorHint] != "install ffmpeg" {
		t.Fatalf("caller hint should win: %v", attrs)
	}
	if attrs[logging.FieldImpact] == "" {
		t.Fatalf("expected default impact: %v", attrs)
	}
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	var records []slog.Record
	base := slog.New(captureHandler{records: &records})

	ctx := logging.WithRequestID(context.Background(), "req-1")
	ctx = logging.WithCacheKey(ctx, "deadbeef")
	logging.WithContext(ctx, base).Info("lookup")

	attrs := recordAttrs(records[0])
	if attrs[logging.FieldCorrelationID] != "req-1" || attrs[logging.FieldCacheKey] != "deadbeef" {
		t.Fatalf("missing context fields: %v", attrs)
	}

	if got := logging.ContextFields(context.Background()); len(got) != 0 {
		t.Fatalf("expected no fields for bare context, got %v", got)
	}
	if _, ok := logging.RequestIDFromContext(logging.WithRequestID(context.Background(), "  ")); ok {
		t.Fatal("blank request id should not be stored")
	}
}

func TestConsoleWithAttrsAndGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Outputs: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "cache").With(logging.String(logging.FieldCacheKey, "abc123"))
	logger.WithGroup("prune").Warn("entry removed", logging.Int("freed", 10), logging.Error(nil))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, " WARN cache: entry removed cache_key=abc123 prune.freed=10") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "error=") {
		t.Fatalf("nil error should be dropped: %q", line)
	}
}

func TestJSONDurationsInSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: "json", Outputs: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("probe finished", logging.Duration("elapsed", 1500*time.Millisecond))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if record["elapsed_sec"] != 1.5 {
		t.Fatalf("expected elapsed_sec=1.5, got %v", record)
	}
	if _, ok := record["source"]; ok {
		t.Fatalf("source should only be added at debug level: %v", record)
	}
}
