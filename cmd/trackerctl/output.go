package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/2beens/fitnesstracker/internal/progress"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printOverview(w io.Writer, ov progress.Overview) {
	fmt.Fprintf(w, "Week %d/12: %s (started %s)\n", ov.CurrentWeek, ov.Program.Title, ov.WeekStart)
	if ov.TodaySchedule != nil {
		fmt.Fprintf(w, "Today %s: %s - %s\n", ov.Today, ov.TodaySchedule.Type, ov.TodaySchedule.Activity)
	}

	var record progress.DayRecord
	if ov.TodayRecord != nil {
		record = *ov.TodayRecord
	}
	for _, field := range progress.AllFields {
		fmt.Fprintf(w, "  %s %s\n", check(record.Get(field)), field)
	}
	if record.WakeTime != nil {
		fmt.Fprintf(w, "  woke up at %s\n", *record.WakeTime)
	}
	if ov.PerfectDay {
		fmt.Fprintln(w, "  Perfect day! 🌟")
	}

	fmt.Fprintf(w, "Weekly completion: %d%%\n", ov.WeeklyCompletionPercent)
	fmt.Fprintf(w, "Streak: %d days (longest %d)\n", ov.Streak, ov.LongestStreak)
	fmt.Fprintf(w, "Total workouts: %d\n", ov.TotalWorkouts)
	if ov.AvgEnergy > 0 {
		fmt.Fprintf(w, "Average energy: %d/5\n", ov.AvgEnergy)
	}
	if len(ov.Badges) > 0 {
		names := make([]string, 0, len(ov.Badges))
		for _, b := range ov.Badges {
			names = append(names, b.Emoji+" "+b.Text)
		}
		fmt.Fprintf(w, "Badges: %s\n", strings.Join(names, ", "))
	}
	if ov.ProgressionRecommended {
		fmt.Fprintf(w, "🎉 Great job completing Week %d! Run `trackerctl week advance` to move on.\n", ov.CurrentWeek)
	}
}
