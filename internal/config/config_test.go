package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidingest/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VIDINGEST_CACHE_DIR", "")
	t.Setenv("VIDINGEST_FILES_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "vidingest", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "vidingest", "files"); cfg.Paths.FilesDir != want {
		t.Fatalf("unexpected files dir: got %q want %q", cfg.Paths.FilesDir, want)
	}
	if want := filepath.Join(os.TempDir(), "video-ingest"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if cfg.CatalogPath() != filepath.Join(tempHome, ".local", "share", "vidingest", "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.CatalogPath())
	}
	if cfg.Ingest.FrameIntervalSec != 2 || cfg.Ingest.MaxFrames != 12 ||
		cfg.Ingest.SegmentDurationSec != 20 || cfg.Ingest.MaxAudioDurationSec != 600 {
		t.Fatalf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.ProbeTimeout().Seconds() != 30 {
		t.Fatalf("unexpected probe timeout: %v", cfg.ProbeTimeout())
	}
	if cfg.FFmpegTimeout() != 0 {
		t.Fatalf("expected unbounded ffmpeg timeout, got %v", cfg.FFmpegTimeout())
	}
}

func TestLoadCustomConfigAndEnvOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	envCache := filepath.Join(t.TempDir(), "cache")
	t.Setenv("VIDINGEST_CACHE_DIR", envCache)
	t.Setenv("VIDINGEST_FILES_DIR", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
cache_dir = "/ignored"
files_dir = "~/media"

[ingest]
frame_interval_sec = 5
max_frames = 0
segment_duration_sec = 10

[tools]
ffmpeg = "  /opt/ffmpeg  "
ffmpeg_timeout = 120

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.CacheDir != envCache {
		t.Fatalf("env override not applied: %q", cfg.Paths.CacheDir)
	}
	if cfg.Paths.FilesDir != filepath.Join(tempHome, "media") {
		t.Fatalf("unexpected files dir: %q", cfg.Paths.FilesDir)
	}
	if cfg.Ingest.FrameIntervalSec != 5 || cfg.Ingest.MaxFrames != 0 || cfg.Ingest.SegmentDurationSec != 10 {
		t.Fatalf("unexpected ingest section: %+v", cfg.Ingest)
	}
	if cfg.Ingest.MaxAudioDurationSec != 600 {
		t.Fatalf("expected default audio cap, got %v", cfg.Ingest.MaxAudioDurationSec)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tools: %+v", cfg.Tools)
	}
	if cfg.FFmpegTimeout().Seconds() != 120 {
		t.Fatalf("unexpected ffmpeg timeout: %v", cfg.FFmpegTimeout())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.FrameIntervalSec = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateAudioLanguage(t *testing.T) {
	cfg := config.Default()
	if !cfg.Cache.AutoPrune || cfg.Ingest.AudioLanguage != "en" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Cache, cfg.Ingest)
	}
	for _, lang := range []string{"", "eng", "French", "pt-BR"} {
		cfg.Ingest.AudioLanguage = lang
		if err := cfg.Validate(); err != nil {
			t.Fatalf("audio_language %q rejected: %v", lang, err)
		}
	}
	cfg.Ingest.AudioLanguage = "klingon"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "audio_language") {
		t.Fatalf("expected audio_language error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Ingest.MaxFrames != 12 {
		t.Fatalf("unexpected sample max_frames: %d", decoded.Ingest.MaxFrames)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if err := config.CreateSample(path, false); !errors.Is(err, config.ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("overwrite returned error: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.FilesDir = filepath.Join(base, "files")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.FilesDir, cfg.Paths.DataDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
