package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidingest/internal/catalog"
	"vidingest/internal/config"
	"vidingest/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    ingestFlags
		existing bool
		settle   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest video files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ingestService()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve dir: %w", err)
			}
			opts := flags.options()
			out := cmd.OutOrStdout()

			return ctx.withCatalog(cmd.Context(), func(cfg *config.Config, store *catalog.Store) error {
				handle := func(runCtx context.Context, path string) error {
					file, err := catalogFile(runCtx, store, cfg, path, flags.importFile)
					if err != nil {
						return err
					}
					result, err := ingestFile(runCtx, svc, store, file, opts)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Ingested %s: %d frames, %d segments (%s)\n",
						result.SourceName, len(result.Frames), len(result.Segments), shortKey(result.CacheKey))
					return nil
				}

				if existing {
					paths, err := watch.Existing(dir)
					if err != nil {
						return fmt.Errorf("list %s: %w", dir, err)
					}
					for _, path := range paths {
						if err := handle(cmd.Context(), path); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", path, err)
						}
					}
				}

				w := watch.Watcher{Dir: dir, Settle: settle, Logger: logger, Handle: handle}
				err := w.Run(cmd.Context())
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&existing, "existing", false, "Ingest videos already in the directory before watching")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Quiet period before a new file is ingested")
	cmd.Flags().BoolVar(&flags.importFile, "import", false, "Copy files into the managed files directory before ingesting")
	cmd.Flags().Float64Var(&flags.interval, "interval", 0, "Seconds between sampled frames (0 = config default)")
	cmd.Flags().IntVar(&flags.maxFrames, "max-frames", -1, "Maximum frames to sample (-1 = config default)")
	cmd.Flags().Float64Var(&flags.segment, "segment", 0, "Timeline segment width in seconds (0 = config default)")
	cmd.Flags().Float64Var(&flags.maxAudio, "max-audio", 0, "Maximum seconds of audio to extract (0 = config default)")
	return cmd
}
