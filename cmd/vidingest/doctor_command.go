package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidingest/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg and ffprobe are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = deps.ProbeVersions(cmd.Context(), ctx.toolRunner(logger), statuses)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, "Dependencies:")
			for _, line := range dependencyLines(statuses, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Cache dir", statusInfo, cfg.Paths.CacheDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Catalog", statusInfo, cfg.CatalogPath(), colorize))
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return errors.New("required dependencies missing")
			}
			return nil
		},
	}
}
