package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/2beens/fitnesstracker/internal/program"
	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

// storage slot keys, one serialized value each
const (
	SlotCurrentWeek = "fitnessTracker_currentWeek"
	SlotDailyData   = "fitnessTracker_dailyData"
	SlotProgress    = "fitnessTracker_progress"
	SlotStartDate   = "fitnessTracker_startDate"
)

var AllSlots = []string{SlotCurrentWeek, SlotDailyData, SlotProgress, SlotStartDate}

//go:generate mockgen -source=$GOFILE -destination=storage_mocks_test.go -package=progress_test

// SlotStorage is the durable key/value storage holding the serialized state slots.
type SlotStorage interface {
	// Read returns ErrSlotNotFound for a key that was never written.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
}

// Summary is derived from the daily records and the current week.
type Summary struct {
	TotalWorkouts int       `json:"totalWorkouts"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	Badges        []BadgeID `json:"badges"`
}

type ProgramState struct {
	CurrentWeek  int                `json:"currentWeek"`
	StartDate    Date               `json:"startDate"`
	DailyRecords map[Date]DayRecord `json:"dailyData"`
	Progress     Summary            `json:"progress"`
}

// DefaultState is the state of a program that starts today.
func DefaultState(today Date) ProgramState {
	return ProgramState{
		CurrentWeek:  program.FirstWeek,
		StartDate:    today,
		DailyRecords: make(map[Date]DayRecord),
		Progress: Summary{
			Badges: []BadgeID{},
		},
	}
}

func (ps ProgramState) clone() ProgramState {
	c := ps
	c.DailyRecords = make(map[Date]DayRecord, len(ps.DailyRecords))
	for d, r := range ps.DailyRecords {
		c.DailyRecords[d] = r.clone()
	}
	c.Progress.Badges = append([]BadgeID{}, ps.Progress.Badges...)
	return c
}

// LoadState reads every slot from storage. A missing or corrupt slot is
// replaced by its default and logged; loading never fails. stored is false
// when no start date was found, so the defaulted one still has to be written.
func LoadState(ctx context.Context, storage SlotStorage, today Date, metricsManager *metrics.Manager) (_ ProgramState, stored bool) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progress.state.load")
	defer span.End()

	state := DefaultState(today)

	readSlot := func(key string, target any) {
		err := decodeSlot(ctx, storage, key, target)
		switch {
		case err == nil:
		case errors.Is(err, ErrSlotNotFound):
			log.Debugf("progress state: slot [%s] not found, using default", key)
		default:
			log.Errorf("progress state: %s, using default", err)
			if metricsManager != nil {
				metricsManager.CounterStorageReadErrors.Inc()
			}
		}
	}

	var currentWeek int
	readSlot(SlotCurrentWeek, &currentWeek)
	if currentWeek != 0 {
		state.CurrentWeek = clampWeek(currentWeek)
		if state.CurrentWeek != currentWeek {
			log.Warnf("progress state: stored week %d out of range, using %d", currentWeek, state.CurrentWeek)
		}
	}

	var startDate Date
	readSlot(SlotStartDate, &startDate)
	if !startDate.IsZero() {
		state.StartDate = startDate
		stored = true
	}

	var records map[Date]DayRecord
	readSlot(SlotDailyData, &records)
	for d, r := range records {
		state.DailyRecords[d] = sanitizeRecord(d, r)
	}

	var summary Summary
	readSlot(SlotProgress, &summary)
	state.Progress.LongestStreak = summary.LongestStreak

	return state, stored
}

func decodeSlot(ctx context.Context, storage SlotStorage, key string, target any) error {
	data, err := storage.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return err
		}
		return fmt.Errorf("%w: read slot [%s]: %w", ErrStorageRead, key, err)
	}
	if len(data) == 0 {
		return ErrSlotNotFound
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: corrupt slot [%s]: %w", ErrStorageRead, key, err)
	}
	return nil
}

// encodeSlots serializes the state into its four slots.
func encodeSlots(state ProgramState) (map[string][]byte, error) {
	dailyData, err := json.Marshal(state.DailyRecords)
	if err != nil {
		return nil, fmt.Errorf("marshal daily data: %w", err)
	}
	summary, err := json.Marshal(state.Progress)
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	startDate, err := json.Marshal(state.StartDate)
	if err != nil {
		return nil, fmt.Errorf("marshal start date: %w", err)
	}
	return map[string][]byte{
		SlotCurrentWeek: []byte(strconv.Itoa(state.CurrentWeek)),
		SlotDailyData:   dailyData,
		SlotProgress:    summary,
		SlotStartDate:   startDate,
	}, nil
}

func clampWeek(week int) int {
	if week < program.FirstWeek {
		return program.FirstWeek
	}
	if week > program.LastWeek {
		return program.LastWeek
	}
	return week
}

// sanitizeRecord drops stored values a setter would have rejected.
func sanitizeRecord(d Date, r DayRecord) DayRecord {
	if r.EnergyLevel != nil {
		if err := ValidateEnergyLevel(*r.EnergyLevel); err != nil {
			log.Warnf("progress state: dropping energy level of %s: %s", d, err)
			r.EnergyLevel = nil
		}
	}
	if r.WakeTime != nil {
		normalized, err := NormalizeWakeTime(*r.WakeTime)
		if err != nil {
			log.Warnf("progress state: dropping wake time of %s: %s", d, err)
			r.WakeTime = nil
		} else {
			r.WakeTime = &normalized
		}
	}
	return r
}
