package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vidingest/internal/ingestcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the ingest cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ingest cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.cacheManager()
			if err != nil {
				return err
			}
			stats, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Root:    %s\n", stats.Root)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:    %s / %s\n", humanBytes(stats.TotalBytes), humanBytes(stats.MaxBytes))
			if stats.TotalFSBytes > 0 {
				fmt.Fprintf(out, "Disk:    %s free (%.1f%%)\n", humanBytes(int64(stats.FreeBytes)), stats.FreeRatio*100)
			}
			printCacheEntries(out, stats.EntrySummaries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print stats as JSON")
	return cmd
}

func printCacheEntries(out io.Writer, entries []ingestcache.EntrySummary) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cached videos: none")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		label := strings.TrimSpace(entry.SourceName)
		if !entry.Valid {
			label = "(no valid manifest)"
		}
		rows = append(rows, []string{
			shortKey(entry.Key),
			label,
			itoa(entry.Frames),
			itoa(entry.Segments),
			yesNo(entry.HasAudio),
			humanBytes(entry.SizeBytes),
			formatStamp(entry.ModifiedAt),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Key", "Source", "Frames", "Segments", "Audio", "Size", "Updated"}, rows, 2, 3, 5))
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove the oldest entries until the cache fits its limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.cacheManager()
			if err != nil {
				return err
			}
			report, err := manager.Prune(cmd.Context(), "")
			if err != nil {
				return err
			}
			if len(report.Removed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
				return nil
			}
			after, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries, %s (now %s / %s)\n",
				len(report.Removed), humanBytes(report.FreedBytes), humanBytes(after.TotalBytes), humanBytes(after.MaxBytes))
			return nil
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show the cached result for a cache key (or unique key prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.cacheManager()
			if err != nil {
				return err
			}
			key, err := resolveCacheKey(cmd, manager, args[0])
			if err != nil {
				return err
			}
			manifest, found, err := manager.Store().Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no cache entry for %s", key)
			}
			if jsonOut {
				return writeJSON(cmd, manifest)
			}
			printIngestSummary(cmd.OutOrStdout(), manifest.Result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the manifest as JSON")
	return cmd
}

func resolveCacheKey(cmd *cobra.Command, manager *ingestcache.Manager, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("cache key is required")
	}
	stats, err := manager.Stats(cmd.Context())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, entry := range stats.EntrySummaries {
		if entry.Key == prefix {
			return entry.Key, nil
		}
		if strings.HasPrefix(entry.Key, prefix) {
			matches = append(matches, entry.Key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no cache entry matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("cache key prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
