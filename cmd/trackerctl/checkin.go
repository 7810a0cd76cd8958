package main

import (
	"fmt"
	"strconv"

	"github.com/2beens/fitnesstracker/internal/progress"

	"github.com/spf13/cobra"
)

func newCheckinCmd(app *cliApp) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:         "checkin <wakeup|workout|departure|energy|sleep> [true|false]",
		Short:       "Set a daily check-in",
		Annotations: writesAnnotation,
		Args:        cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}

			value := true
			if len(args) == 2 {
				value, err = strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid check-in value %q: %w", args[1], err)
				}
			}

			if err := app.store.RecordCheckin(day, progress.Field(args[0]), value); err != nil {
				return err
			}
			app.dirty = true
			return app.printDay(cmd, day)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to update as YYYY-MM-DD (default today)")
	return cmd
}

func newWakeTimeCmd(app *cliApp) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:         "wake-time <HH:MM>",
		Short:       "Record the actual wake time",
		Annotations: writesAnnotation,
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}
			if err := app.store.SetWakeTime(day, args[0]); err != nil {
				return err
			}
			app.dirty = true
			return app.printDay(cmd, day)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to update as YYYY-MM-DD (default today)")
	return cmd
}

func newEnergyCmd(app *cliApp) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:         "energy <1-5>",
		Short:       "Record the energy level",
		Annotations: writesAnnotation,
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid energy level %q: %w", args[0], err)
			}
			if err := app.store.SetEnergyLevel(day, level); err != nil {
				return err
			}
			app.dirty = true
			return app.printDay(cmd, day)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to update as YYYY-MM-DD (default today)")
	return cmd
}

func (app *cliApp) printDay(cmd *cobra.Command, day progress.Date) error {
	record, _ := app.store.Record(day)
	if app.jsonOut {
		return writeJSON(cmd.OutOrStdout(), record)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", day)
	for _, field := range progress.AllFields {
		fmt.Fprintf(out, "  %s %s\n", check(record.Get(field)), field)
	}
	if record.WakeTime != nil {
		fmt.Fprintf(out, "  woke up at %s\n", *record.WakeTime)
	}
	if record.EnergyLevel != nil {
		fmt.Fprintf(out, "  energy %d/5\n", *record.EnergyLevel)
	}
	if record.IsPerfect() {
		fmt.Fprintln(out, "  Perfect day! 🌟")
	}
	return nil
}
