package advisory

import "context"

const (
	PlanRain  = "Heavy rain expected: Try the 20-min home HIIT routine"
	PlanFog   = "Foggy morning: Indoor bodyweight circuit recommended"
	PlanCold  = "Cold and wet: Perfect day for yoga and stretching"
	PlanStorm = "Stormy weather: Use resistance bands for strength training"
)

var BackupPlans = []string{PlanRain, PlanFog, PlanCold, PlanStorm}

// below this temperature a clear morning still counts as cold
const coldThresholdC = 3.0

// Static maps conditions to backup plans deterministically.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) SuggestBackupPlan(_ context.Context, conditions Conditions) (string, error) {
	switch conditions.Condition {
	case ConditionRain:
		return PlanRain, nil
	case ConditionFog:
		return PlanFog, nil
	case ConditionCold:
		return PlanCold, nil
	case ConditionStorm:
		return PlanStorm, nil
	}
	if conditions.TemperatureC != nil && *conditions.TemperatureC < coldThresholdC {
		return PlanCold, nil
	}
	return "", nil
}
