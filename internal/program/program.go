package program

import (
	"errors"
	"time"
)

const (
	FirstWeek = 1
	LastWeek  = 12
)

var ErrWeekNotFound = errors.New("week not found")

// ActivityType can be one of:
//   - workout
//   - rest
//   - flex
//   - prep
type ActivityType string

const (
	ActivityTypeWorkout ActivityType = "workout"
	ActivityTypeRest    ActivityType = "rest"
	ActivityTypeFlex    ActivityType = "flex"
	ActivityTypePrep    ActivityType = "prep"
)

func (at ActivityType) String() string {
	return string(at)
}

func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeWorkout,
		ActivityTypeRest,
		ActivityTypeFlex,
		ActivityTypePrep:
		return true
	default:
		return false
	}
}

type DaySchedule struct {
	Day      string       `json:"day"`
	Type     ActivityType `json:"type"`
	Activity string       `json:"activity"`
	Location string       `json:"location,omitempty"`
}

type Week struct {
	Number     int           `json:"number"`
	Title      string        `json:"title"`
	WakeTarget string        `json:"wakeTarget"`
	Focus      string        `json:"focus"`
	Workouts   int           `json:"workouts"`
	Schedule   []DaySchedule `json:"schedule"`
	Goals      []string      `json:"goals"`
}

// ForWeekday returns the scheduled activity for the given weekday.
func (w Week) ForWeekday(wd time.Weekday) (DaySchedule, bool) {
	name := wd.String()
	for _, d := range w.Schedule {
		if d.Day == name {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// PlannedWorkouts counts the days tagged as workout in the schedule.
func (w Week) PlannedWorkouts() int {
	count := 0
	for _, d := range w.Schedule {
		if d.Type == ActivityTypeWorkout {
			count++
		}
	}
	return count
}

// Get returns the program entry for the given week number.
func Get(week int) (Week, error) {
	w, ok := weeks[week]
	if !ok {
		return Week{}, ErrWeekNotFound
	}
	return w, nil
}

// GetOrFirst returns the program entry for week, falling back to week 1
// when the table has no such entry.
func GetOrFirst(week int) Week {
	if w, ok := weeks[week]; ok {
		return w
	}
	return weeks[FirstWeek]
}

// All returns every week of the program, ordered by week number.
func All() []Week {
	all := make([]Week, 0, len(weeks))
	for i := FirstWeek; i <= LastWeek; i++ {
		all = append(all, weeks[i])
	}
	return all
}
