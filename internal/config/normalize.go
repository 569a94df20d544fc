package config

import (
	"fmt"
	"math"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeTools()
	if c.Cache.MaxGiB <= 0 {
		c.Cache.MaxGiB = defaultCacheMaxGiB
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("VIDINGEST_CACHE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CacheDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VIDINGEST_FILES_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.FilesDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if strings.TrimSpace(c.Paths.FilesDir) == "" {
		c.Paths.FilesDir = defaultFilesDir
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}

	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.FilesDir, err = expandPath(c.Paths.FilesDir); err != nil {
		return fmt.Errorf("paths.files_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeIngest replaces non-finite or out-of-range defaults so every ingest
// starts from a usable baseline.
func (c *Config) normalizeIngest() {
	if !positiveFinite(c.Ingest.FrameIntervalSec) {
		c.Ingest.FrameIntervalSec = defaultFrameIntervalSec
	}
	if c.Ingest.MaxFrames < 0 {
		c.Ingest.MaxFrames = defaultMaxFrames
	}
	if !positiveFinite(c.Ingest.SegmentDurationSec) {
		c.Ingest.SegmentDurationSec = defaultSegmentDurationSec
	}
	if !positiveFinite(c.Ingest.MaxAudioDurationSec) {
		c.Ingest.MaxAudioDurationSec = defaultMaxAudioDurationSec
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	if c.Tools.ProbeTimeout <= 0 {
		c.Tools.ProbeTimeout = defaultProbeTimeout
	}
	if c.Tools.FFmpegTimeout < 0 {
		c.Tools.FFmpegTimeout = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
