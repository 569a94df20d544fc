package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidingest/internal/catalog"
	"vidingest/internal/config"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage the file catalog",
	}
	filesCmd.AddCommand(newFilesListCommand(ctx))
	filesCmd.AddCommand(newFilesAddCommand(ctx))
	return filesCmd
}

func newFilesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd.Context(), func(cfg *config.Config, store *catalog.Store) error {
				files, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					if files == nil {
						files = []*catalog.File{}
					}
					return writeJSON(cmd, files)
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintln(out, "No files catalogued")
					return nil
				}
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					location := f.Path
					if location == "" {
						location = catalog.ManagedPath(cfg.Paths.FilesDir, f.ID, f.Ext)
					}
					rows = append(rows, []string{
						f.ID,
						f.Name,
						f.Kind,
						humanBytes(f.SizeBytes),
						shortKey(f.LastCacheKey),
						truncate(location, 60),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Kind", "Size", "Cache", "Location"}, rows, 3))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print files as JSON")
	return cmd
}

func newFilesAddCommand(ctx *commandContext) *cobra.Command {
	var importFile bool
	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add files to the catalog without ingesting them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd.Context(), func(cfg *config.Config, store *catalog.Store) error {
				for _, arg := range args {
					file, err := catalogFile(cmd.Context(), store, cfg, arg, importFile)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s (%s)\n", file.Name, file.ID, file.Kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&importFile, "import", false, "Copy files into the managed files directory")
	return cmd
}
