package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidingest/internal/logging"
	"vidingest/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		poll   time.Duration
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the vidingest log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogFilePath(cfg)
			if path == "" {
				return fmt.Errorf("paths.log_dir is not set; logs are only written to stderr")
			}
			filter.MinLevel = strings.ToLower(strings.TrimSpace(filter.MinLevel))
			switch filter.MinLevel {
			case "", "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("invalid --level %q (want debug, info, warn or error)", filter.MinLevel)
			}

			out := cmd.OutOrStdout()
			tail, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, poll, filter, func(line string) error {
				_, err := fmt.Fprintln(out, line)
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().DurationVar(&poll, "poll", logs.DefaultPoll, "Polling interval in follow mode")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only show lines from this component")
	cmd.Flags().StringVar(&filter.CacheKey, "key", "", "Only show lines for this cache key or prefix")
	cmd.Flags().StringVar(&filter.Contains, "grep", "", "Only show lines containing this text")

	return cmd
}
