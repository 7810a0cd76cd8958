package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWeekCmd(app *cliApp) *cobra.Command {
	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Inspect or move the current program week",
	}

	weekCmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Tell whether moving to the next week is recommended",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				week := app.store.CurrentWeek()
				recommended := app.store.CheckWeekProgression(app.store.Today())
				if app.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"currentWeek": week,
						"recommended": recommended,
					})
				}
				if recommended {
					fmt.Fprintf(cmd.OutOrStdout(), "week %d done, ready for week %d\n", week, week+1)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "stay on week %d\n", week)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:         "advance",
			Short:       "Move to the next program week",
			Annotations: writesAnnotation,
			Args:        cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if !app.store.AdvanceWeek(cmd.Context()) {
					fmt.Fprintln(cmd.OutOrStdout(), "already at the last week")
					return nil
				}
				app.dirty = true
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome to Week %d! 🎊\n", app.store.CurrentWeek())
				return nil
			},
		},
	)
	return weekCmd
}
