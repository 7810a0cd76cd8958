// Package advisory suggests indoor backup plans for days the weather spoils
// an outdoor workout.
package advisory

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Condition is a coarse classification of the current weather.
type Condition string

const (
	ConditionClear Condition = "clear"
	ConditionRain  Condition = "rain"
	ConditionFog   Condition = "fog"
	ConditionCold  Condition = "cold"
	ConditionStorm Condition = "storm"
)

type Conditions struct {
	Condition    Condition `json:"condition"`
	TemperatureC *float64  `json:"temperatureC,omitempty"`
	Time         time.Time `json:"time"`
}

//go:generate mockgen -source=$GOFILE -destination=advisory_mocks_test.go -package=advisory_test

// Advisor suggests a backup plan for the given conditions. An empty plan
// means there is nothing to suggest.
type Advisor interface {
	SuggestBackupPlan(ctx context.Context, conditions Conditions) (string, error)
}

// Advice is what the UI shows in its weather alert box.
type Advice struct {
	Show         bool      `json:"show"`
	EarlyMorning bool      `json:"earlyMorning"`
	BackupPlan   string    `json:"backupPlan,omitempty"`
	Condition    Condition `json:"condition,omitempty"`
}

// IsEarlyMorning reports whether t falls into the 05:00-08:59 workout window.
func IsEarlyMorning(t time.Time) bool {
	hour := t.Hour()
	return hour >= 5 && hour <= 8
}

// Check asks the advisor for a plan. The alert is always shown in the early
// morning window, and whenever the advisor has a plan. An advisor error only
// drops the plan.
func Check(ctx context.Context, advisor Advisor, conditions Conditions) Advice {
	advice := Advice{
		EarlyMorning: IsEarlyMorning(conditions.Time),
		Condition:    conditions.Condition,
	}
	advice.Show = advice.EarlyMorning

	plan, err := advisor.SuggestBackupPlan(ctx, conditions)
	if err != nil {
		log.Errorf("suggest backup plan: %s", err)
		return advice
	}
	if plan != "" {
		advice.Show = true
		advice.BackupPlan = plan
	}
	return advice
}
