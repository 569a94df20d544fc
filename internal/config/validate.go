package config

import (
	"errors"
	"fmt"
	"strings"

	"vidingest/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"tools.probe_timeout": c.Tools.ProbeTimeout,
		"cache.max_gib":       c.Cache.MaxGiB,
	}); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.FrameIntervalSec <= 0 {
		return errors.New("ingest.frame_interval_sec must be positive")
	}
	if c.Ingest.MaxFrames < 0 {
		return errors.New("ingest.max_frames must not be negative")
	}
	if c.Ingest.SegmentDurationSec <= 0 {
		return errors.New("ingest.segment_duration_sec must be positive")
	}
	if c.Ingest.MaxAudioDurationSec <= 0 {
		return errors.New("ingest.max_audio_duration_sec must be positive")
	}
	if lang := strings.TrimSpace(c.Ingest.AudioLanguage); lang != "" && language.Normalize(lang) == "" {
		return fmt.Errorf("ingest.audio_language: unrecognised language %q", lang)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
