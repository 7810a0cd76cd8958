package scheduler

import (
	"fmt"
	"time"
)

// Schedule tells when a task runs next.
type Schedule interface {
	Next(now time.Time) time.Time
	// Tolerance is how late a run may start before it is skipped, as after
	// the machine woke up from sleep.
	Tolerance() time.Duration
}

// Every runs a task at a fixed interval.
type Every time.Duration

func (e Every) Next(now time.Time) time.Time {
	return now.Add(time.Duration(e))
}

func (e Every) Tolerance() time.Duration {
	return time.Duration(e) / 2
}

func (e Every) String() string {
	return "every " + time.Duration(e).String()
}

const dailyTolerance = 5 * time.Minute

// DailyAt runs a task once a day at a local time of day.
type DailyAt struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseDailyAt parses an HH:MM time of day.
func ParseDailyAt(hhmm string, loc *time.Location) (DailyAt, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return DailyAt{}, fmt.Errorf("parse time of day %q: %w", hhmm, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return DailyAt{Hour: t.Hour(), Minute: t.Minute(), Location: loc}, nil
}

func (d DailyAt) Next(now time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

func (d DailyAt) Tolerance() time.Duration {
	return dailyTolerance
}

func (d DailyAt) String() string {
	return fmt.Sprintf("daily at %02d:%02d", d.Hour, d.Minute)
}
