package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidingest/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if err := config.CreateSample(target, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(cmd.OutOrStdout(), "Next: vidingest doctor")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func configTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

// config validate loads the file itself so that a broken config is reported
// here rather than by the root pre-run hook.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and show the effective settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			source := resolved
			if !exists {
				source += " (not found, defaults used)"
			}
			fmt.Fprintf(out, "Config: %s\n", source)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, effectiveSettings(cfg)))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func effectiveSettings(cfg *config.Config) [][]string {
	seconds := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "s" }
	autoPrune := "off"
	if cfg.Cache.AutoPrune {
		autoPrune = "on"
	}
	return [][]string{
		{"paths.cache_dir", cfg.Paths.CacheDir},
		{"paths.files_dir", cfg.Paths.FilesDir},
		{"paths.data_dir", cfg.Paths.DataDir},
		{"paths.log_dir", valueOr(cfg.Paths.LogDir, "(stderr only)")},
		{"ingest.frame_interval_sec", seconds(cfg.Ingest.FrameIntervalSec)},
		{"ingest.max_frames", strconv.Itoa(cfg.Ingest.MaxFrames)},
		{"ingest.segment_duration_sec", seconds(cfg.Ingest.SegmentDurationSec)},
		{"ingest.max_audio_duration_sec", seconds(cfg.Ingest.MaxAudioDurationSec)},
		{"ingest.audio_language", valueOr(cfg.Ingest.AudioLanguage, "(any)")},
		{"tools.ffmpeg", cfg.Tools.FFmpeg},
		{"tools.ffprobe", cfg.Tools.FFprobe},
		{"cache.max_gib", strconv.Itoa(cfg.Cache.MaxGiB)},
		{"cache.auto_prune", autoPrune},
		{"logging", cfg.Logging.Format + "/" + cfg.Logging.Level},
	}
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
