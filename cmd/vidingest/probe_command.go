package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidingest/internal/language"
	"vidingest/internal/media/audio"
	"vidingest/internal/media/ffprobe"
)

type probeReport struct {
	Path        string           `json:"path"`
	DurationSec float64          `json:"duration_sec"`
	Streams     []ffprobe.Stream `json:"streams"`
	AudioMap    string           `json:"audio_map"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the streams ffprobe reports for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			probeCtx := cmd.Context()
			if timeout := cfg.ProbeTimeout(); timeout > 0 {
				var cancel context.CancelFunc
				probeCtx, cancel = context.WithTimeout(probeCtx, timeout)
				defer cancel()
			}
			res, err := ffprobe.Inspect(probeCtx, ctx.toolRunner(logger), cfg.Tools.FFprobe, args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}
			selection := audio.Select(res.Streams, cfg.Ingest.AudioLanguage)
			report := probeReport{
				Path:        args[0],
				DurationSec: res.MediaDuration(),
				Streams:     res.Streams,
				AudioMap:    selection.MapArg(),
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			duration := "unknown"
			if report.DurationSec > 0 {
				duration = fmt.Sprintf("%s (%.3fs)", formatSeconds(report.DurationSec), report.DurationSec)
			}
			fmt.Fprintf(out, "File:      %s\n", report.Path)
			fmt.Fprintf(out, "Duration:  %s\n", duration)
			fmt.Fprintf(out, "Streams:   %d video, %d audio\n", res.VideoStreamCount(), res.AudioStreamCount())
			if label := selection.PrimaryLabel(); label != "" {
				fmt.Fprintf(out, "Audio map: %s (%s)\n", report.AudioMap, label)
			} else {
				fmt.Fprintf(out, "Audio map: %s\n", report.AudioMap)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Type", "Codec", "Language", "Detail", "Default"},
				streamRows(res.Streams, selection.PrimaryIndex),
				0,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the probe report as JSON")
	return cmd
}

func streamRows(streams []ffprobe.Stream, primary int) [][]string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		detail := ""
		switch s.CodecType {
		case "video":
			if s.Width > 0 && s.Height > 0 {
				detail = fmt.Sprintf("%dx%d", s.Width, s.Height)
			}
		case "audio":
			if s.Channels > 0 {
				detail = fmt.Sprintf("%d ch", s.Channels)
			}
			if s.Index == primary {
				detail = strings.TrimSpace(detail + " (selected)")
			}
		}
		lang := ""
		if s.CodecType != "video" {
			lang = language.DisplayName(language.FromTags(s.Tags))
		}
		rows = append(rows, []string{
			itoa(s.Index),
			s.CodecType,
			s.CodecName,
			lang,
			detail,
			yesNo(s.Disposition["default"] == 1),
		})
	}
	return rows
}
