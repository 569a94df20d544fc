package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidingest/internal/catalog"
	"vidingest/internal/config"
	"vidingest/internal/ingest"
	"vidingest/internal/ingestspec"
)

type ingestFlags struct {
	jsonOut    bool
	importFile bool
	fileID     string
	interval   float64
	maxFrames  int
	segment    float64
	maxAudio   float64
}

func (f ingestFlags) options() ingestspec.Options {
	return ingestspec.Options{
		FrameIntervalSec:    f.interval,
		MaxFrames:           f.maxFrames,
		SegmentDurationSec:  f.segment,
		MaxAudioDurationSec: f.maxAudio,
	}
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest video files into the cache",
		Long: "Register each file in the catalog, extract frames, audio and sidecar subtitles,\n" +
			"and print the resulting timeline. Unchanged files are served from the cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(flags.fileID)
			switch {
			case id == "" && len(args) == 0:
				return errors.New("provide at least one file or --id")
			case id != "" && len(args) > 0:
				return errors.New("--id cannot be combined with file arguments")
			}
			svc, err := ctx.ingestService()
			if err != nil {
				return err
			}
			opts := flags.options()

			return ctx.withCatalog(cmd.Context(), func(cfg *config.Config, store *catalog.Store) error {
				var files []*catalog.File
				if id != "" {
					file, err := store.Get(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("lookup %s: %w", id, err)
					}
					files = append(files, file)
				}
				for _, arg := range args {
					file, err := catalogFile(cmd.Context(), store, cfg, arg, flags.importFile)
					if err != nil {
						return err
					}
					files = append(files, file)
				}

				results := make([]ingestspec.Result, 0, len(files))
				for _, file := range files {
					result, err := ingestFile(cmd.Context(), svc, store, file, opts)
					if err != nil {
						return err
					}
					results = append(results, result)
				}

				if flags.jsonOut {
					if len(results) == 1 {
						return writeJSON(cmd, results[0])
					}
					return writeJSON(cmd, results)
				}
				out := cmd.OutOrStdout()
				for i, result := range results {
					if i > 0 {
						fmt.Fprintln(out)
					}
					printIngestSummary(out, result)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&flags.importFile, "import", false, "Copy files into the managed files directory before ingesting")
	cmd.Flags().StringVar(&flags.fileID, "id", "", "Ingest a file already in the catalog")
	cmd.Flags().Float64Var(&flags.interval, "interval", 0, "Seconds between sampled frames (0 = config default)")
	cmd.Flags().IntVar(&flags.maxFrames, "max-frames", -1, "Maximum frames to sample, 0 disables frames (-1 = config default)")
	cmd.Flags().Float64Var(&flags.segment, "segment", 0, "Timeline segment width in seconds (0 = config default)")
	cmd.Flags().Float64Var(&flags.maxAudio, "max-audio", 0, "Maximum seconds of audio to extract (0 = config default)")
	return cmd
}

func catalogFile(ctx context.Context, store *catalog.Store, cfg *config.Config, path string, importFile bool) (*catalog.File, error) {
	if importFile {
		file, err := store.Import(ctx, path, cfg.Paths.FilesDir)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		return file, nil
	}
	file, err := store.Register(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", path, err)
	}
	return file, nil
}

func ingestFile(ctx context.Context, svc *ingest.Service, store *catalog.Store, file *catalog.File, opts ingestspec.Options) (ingestspec.Result, error) {
	result, err := svc.Ingest(ctx, ingest.SourceFromFile(file), opts)
	if err != nil {
		return ingestspec.Result{}, fmt.Errorf("ingest %s: %w", file.Name, err)
	}
	if err := store.RecordIngest(ctx, file.ID, result.CacheKey); err != nil {
		return ingestspec.Result{}, fmt.Errorf("record ingest: %w", err)
	}
	return result, nil
}

func printIngestSummary(out io.Writer, r ingestspec.Result) {
	fmt.Fprintf(out, "Source:     %s (%s)\n", r.SourceName, r.SourceID)
	fmt.Fprintf(out, "Cache key:  %s\n", r.CacheKey)
	fmt.Fprintf(out, "Cache dir:  %s\n", r.CacheDir)
	duration := "unknown"
	if r.DurationSec > 0 {
		duration = formatSeconds(r.DurationSec)
	}
	fmt.Fprintf(out, "Duration:   %s\n", duration)
	fmt.Fprintf(out, "Frames:     %d (every %gs)\n", len(r.Frames), r.FrameIntervalSec)
	if r.Audio != nil {
		fmt.Fprintf(out, "Audio:      %s (%d Hz, %d ch, %s)\n", filepath.Base(r.Audio.Path), r.Audio.SampleRate, r.Audio.ChannelCount, humanBytes(r.Audio.SizeBytes))
	} else {
		fmt.Fprintln(out, "Audio:      none")
	}
	if r.Transcript != nil {
		fmt.Fprintf(out, "Transcript: %s (%d cues)\n", filepath.Base(r.Transcript.Path), len(r.Transcript.Segments))
	} else {
		fmt.Fprintln(out, "Transcript: none")
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(out, "Warning:    %s\n", warning)
	}
	printSegments(out, r)
}

func printSegments(out io.Writer, r ingestspec.Result) {
	rows := make([][]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		frame := ""
		if seg.RepresentativeFramePath != "" {
			frame = filepath.Base(seg.RepresentativeFramePath)
		}
		rows = append(rows, []string{
			itoa(seg.Index),
			formatSeconds(seg.StartSec),
			formatSeconds(seg.EndSec),
			itoa(len(seg.FramePaths)),
			frame,
			truncate(seg.TranscriptText, 60),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Frames", "Representative", "Transcript"}, rows, 0, 1, 2, 3))
}
