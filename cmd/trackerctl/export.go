package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2beens/fitnesstracker/internal/progress"

	"github.com/spf13/cobra"
)

func newExportCmd(app *cliApp) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the whole progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := app.now()
			data, err := app.store.Export(now)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, progress.ExportFileName(now))
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory the backup file is written to")
	return cmd
}

func newImportCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:         "import <backup.json>",
		Short:       "Replace the whole progress with a JSON backup",
		Annotations: writesAnnotation,
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			if err := app.store.Import(cmd.Context(), data); err != nil {
				return err
			}
			// a failed write is reported by the final flush
			app.dirty = true

			state := app.store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "imported week %d with %d daily records\n", state.CurrentWeek, len(state.DailyRecords))
			return nil
		},
	}
}
