package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(app *cliApp) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the program overview for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}

			ov := app.store.Overview(day)
			if app.jsonOut {
				return writeJSON(cmd.OutOrStdout(), ov)
			}
			printOverview(cmd.OutOrStdout(), ov)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show as YYYY-MM-DD (default today)")
	return cmd
}
