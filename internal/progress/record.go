package progress

import (
	"fmt"
	"time"
)

// Field is one of the five daily check-in flags.
type Field string

const (
	FieldWakeup    Field = "wakeup"
	FieldWorkout   Field = "workout"
	FieldDeparture Field = "departure"
	FieldEnergy    Field = "energy"
	FieldSleep     Field = "sleep"
)

var AllFields = []Field{FieldWakeup, FieldWorkout, FieldDeparture, FieldEnergy, FieldSleep}

func (f Field) String() string {
	return string(f)
}

func (f Field) IsValid() bool {
	switch f {
	case FieldWakeup, FieldWorkout, FieldDeparture, FieldEnergy, FieldSleep:
		return true
	default:
		return false
	}
}

const (
	MinEnergyLevel = 1
	MaxEnergyLevel = 5

	wakeTimeLayout = "15:04"
)

// DayRecord holds the check-ins of one calendar day. A record exists only
// for days the user interacted with.
type DayRecord struct {
	Wakeup    bool `json:"wakeup"`
	Workout   bool `json:"workout"`
	Departure bool `json:"departure"`
	Energy    bool `json:"energy"`
	Sleep     bool `json:"sleep"`

	WakeTime             *string   `json:"wakeTime,omitempty"`
	EnergyLevel          *int      `json:"energyLevel,omitempty"`
	RecordedAt           time.Time `json:"recordedAt"`
	MorningGreetingShown *bool     `json:"morningGreeting,omitempty"`
}

// Qualifies reports whether the day counts toward streaks and weekly completion.
func (r DayRecord) Qualifies() bool {
	return r.Wakeup && r.Workout
}

// IsPerfect reports whether all five check-ins are done.
func (r DayRecord) IsPerfect() bool {
	return r.Wakeup && r.Workout && r.Departure && r.Energy && r.Sleep
}

func (r DayRecord) Get(field Field) bool {
	switch field {
	case FieldWakeup:
		return r.Wakeup
	case FieldWorkout:
		return r.Workout
	case FieldDeparture:
		return r.Departure
	case FieldEnergy:
		return r.Energy
	case FieldSleep:
		return r.Sleep
	default:
		return false
	}
}

func (r *DayRecord) set(field Field, value bool) {
	switch field {
	case FieldWakeup:
		r.Wakeup = value
	case FieldWorkout:
		r.Workout = value
	case FieldDeparture:
		r.Departure = value
	case FieldEnergy:
		r.Energy = value
	case FieldSleep:
		r.Sleep = value
	}
}

func (r DayRecord) clone() DayRecord {
	c := r
	if r.WakeTime != nil {
		wt := *r.WakeTime
		c.WakeTime = &wt
	}
	if r.EnergyLevel != nil {
		lvl := *r.EnergyLevel
		c.EnergyLevel = &lvl
	}
	if r.MorningGreetingShown != nil {
		shown := *r.MorningGreetingShown
		c.MorningGreetingShown = &shown
	}
	return c
}

// NormalizeWakeTime validates a local time of day and returns it as HH:MM,
// so that plain string comparison orders wake times correctly.
func NormalizeWakeTime(value string) (string, error) {
	t, err := time.Parse(wakeTimeLayout, value)
	if err != nil {
		return "", fmt.Errorf("%w: malformed wake time %q", ErrValidation, value)
	}
	return t.Format(wakeTimeLayout), nil
}

func ValidateEnergyLevel(level int) error {
	if level < MinEnergyLevel || level > MaxEnergyLevel {
		return fmt.Errorf("%w: energy level %d out of range %d-%d", ErrValidation, level, MinEnergyLevel, MaxEnergyLevel)
	}
	return nil
}
