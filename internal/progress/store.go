package progress

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/2beens/fitnesstracker/internal/program"
	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const (
	streakWindowDays     = 30
	daysPerWeek          = 7
	progressionMinRatio  = 0.8
	morningGreetingFrom  = "05:45"
	morningGreetingUntil = "06:30"
)

// Store owns the program state. Every operation holds the store mutex for
// its whole duration, so there is a single writer at any time.
type Store struct {
	mu      sync.Mutex
	state   ProgramState
	storage SlotStorage
	// rev counts state changes, flushedRev is the last one written to storage
	rev        uint64
	flushedRev uint64

	metricsManager *metrics.Manager
	now            func() time.Time
	location       *time.Location
}

type StoreOption func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation sets the location calendar days are computed in.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) {
		s.location = loc
	}
}

func WithMetrics(metricsManager *metrics.Manager) StoreOption {
	return func(s *Store) {
		s.metricsManager = metricsManager
	}
}

// Load creates a store from the state found in storage.
func Load(ctx context.Context, storage SlotStorage, opts ...StoreOption) *Store {
	s := &Store{
		storage:  storage,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	state, stored := LoadState(ctx, storage, s.today(), s.metricsManager)
	s.state = state
	s.recomputeLocked()
	if !stored {
		s.changedLocked()
	}

	log.Debugf("progress store loaded: week %d, start date %s, %d daily records",
		s.state.CurrentWeek, s.state.StartDate, len(s.state.DailyRecords))
	return s
}

func (s *Store) today() Date {
	return DateOf(s.now().In(s.location))
}

// Today returns the current calendar day in the store location.
func (s *Store) Today() Date {
	return s.today()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() ProgramState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) CurrentWeek() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentWeek
}

// Record returns the record of the given day, if the user interacted with it.
func (s *Store) Record(date Date) (DayRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.DailyRecords[date]
	if !ok {
		return DayRecord{}, false
	}
	return r.clone(), true
}

// RecordCheckin sets one check-in flag of the given day, creating the record
// if needed. Setting a flag to the value it already has changes nothing.
func (s *Store) RecordCheckin(date Date, field Field, value bool) error {
	if !field.IsValid() {
		return fmt.Errorf("%w: unknown check-in field %q", ErrValidation, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.state.DailyRecords[date]
	if exists && record.Get(field) == value {
		return nil
	}

	record.set(field, value)
	s.putRecordLocked(date, record)

	if s.metricsManager != nil {
		s.metricsManager.CounterCheckins.WithLabelValues(field.String()).Inc()
	}
	log.Tracef("check-in %s [%s] = %t", date, field, value)
	return nil
}

// SetWakeTime stores the actual wake time (HH:MM) of the given day.
func (s *Store) SetWakeTime(date Date, wakeTime string) error {
	normalized, err := NormalizeWakeTime(wakeTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.state.DailyRecords[date]
	if exists && record.WakeTime != nil && *record.WakeTime == normalized {
		return nil
	}
	record.WakeTime = &normalized
	s.putRecordLocked(date, record)
	return nil
}

// SetEnergyLevel stores the energy level (1-5) of the given day.
func (s *Store) SetEnergyLevel(date Date, level int) error {
	if err := ValidateEnergyLevel(level); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.state.DailyRecords[date]
	if exists && record.EnergyLevel != nil && *record.EnergyLevel == level {
		return nil
	}
	record.EnergyLevel = &level
	s.putRecordLocked(date, record)
	return nil
}

func (s *Store) putRecordLocked(date Date, record DayRecord) {
	record.RecordedAt = s.now().UTC()
	s.state.DailyRecords[date] = record
	s.recomputeLocked()
	s.changedLocked()
}

func (s *Store) changedLocked() {
	s.rev++
}

// Dirty reports whether the state changed since it was last flushed.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev != s.flushedRev
}

// recomputeLocked refreshes the derived summary as of today.
func (s *Store) recomputeLocked() {
	today := s.today()
	streak := s.computeStreakLocked(today)

	s.state.Progress.TotalWorkouts = s.totalWorkoutsLocked()
	s.state.Progress.CurrentStreak = streak
	if streak > s.state.Progress.LongestStreak {
		s.state.Progress.LongestStreak = streak
	}
	s.state.Progress.Badges = s.computeBadgesLocked(today)

	if s.metricsManager != nil {
		s.metricsManager.GaugeStreak.Set(float64(streak))
		s.metricsManager.GaugeCurrentWeek.Set(float64(s.state.CurrentWeek))
	}
}

func (s *Store) totalWorkoutsLocked() int {
	total := 0
	for _, r := range s.state.DailyRecords {
		if r.Workout {
			total++
		}
	}
	return total
}

// ComputeStreak counts consecutive qualifying days walking back from asOf,
// looking at most 30 days back. The asOf day itself never breaks the streak,
// since the day may not be completed yet.
func (s *Store) ComputeStreak(asOf Date) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeStreakLocked(asOf)
}

func (s *Store) computeStreakLocked(asOf Date) int {
	streak := 0
	for offset := 0; offset < streakWindowDays; offset++ {
		record, ok := s.state.DailyRecords[asOf.AddDays(-offset)]
		if ok && record.Qualifies() {
			streak++
			continue
		}
		if offset > 0 {
			break
		}
	}
	return streak
}

// WeekStartDate returns the Monday on or before startDate + (week-1)*7 days.
func (s *Store) WeekStartDate(week int) Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekStartDateLocked(week)
}

func (s *Store) weekStartDateLocked(week int) Date {
	return s.state.StartDate.AddDays((week - 1) * daysPerWeek).MondayOnOrBefore()
}

// WeeklyCompletionRatio is the fraction of the 7 days of the week that qualify.
func (s *Store) WeeklyCompletionRatio(week int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weeklyCompletionRatioLocked(week)
}

func (s *Store) weeklyCompletionRatioLocked(week int) float64 {
	start := s.weekStartDateLocked(week)
	completed := 0
	for i := 0; i < daysPerWeek; i++ {
		if record, ok := s.state.DailyRecords[start.AddDays(i)]; ok && record.Qualifies() {
			completed++
		}
	}
	return float64(completed) / daysPerWeek
}

// AverageEnergy averages the energy levels recorded during the week. Days
// without a level are left out entirely; ok is false when no day has one.
func (s *Store) AverageEnergy(week int) (avg float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.averageEnergyLocked(week)
}

func (s *Store) averageEnergyLocked(week int) (float64, bool) {
	start := s.weekStartDateLocked(week)
	sum, count := 0, 0
	for i := 0; i < daysPerWeek; i++ {
		record, ok := s.state.DailyRecords[start.AddDays(i)]
		if !ok || record.EnergyLevel == nil {
			continue
		}
		sum += *record.EnergyLevel
		count++
	}
	if count == 0 {
		return 0, false
	}
	return float64(sum) / float64(count), true
}

// ComputeBadges derives the earned badges as of the given day.
func (s *Store) ComputeBadges(asOf Date) []BadgeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeBadgesLocked(asOf)
}

func (s *Store) computeBadgesLocked(asOf Date) []BadgeID {
	in := badgeInputs{
		streak:        s.computeStreakLocked(asOf),
		totalWorkouts: s.totalWorkoutsLocked(),
		currentWeek:   s.state.CurrentWeek,
	}
	if record, ok := s.state.DailyRecords[asOf]; ok {
		in.todayWakeTime = record.WakeTime
	}
	return evaluateBadges(in)
}

// AdvanceWeek moves the program to the next week and flushes the state.
// At the last week it does nothing and reports false.
func (s *Store) AdvanceWeek(ctx context.Context) bool {
	s.mu.Lock()
	if s.state.CurrentWeek >= program.LastWeek {
		s.mu.Unlock()
		return false
	}
	s.state.CurrentWeek++
	s.recomputeLocked()
	s.changedLocked()
	week := s.state.CurrentWeek
	s.mu.Unlock()

	log.Infof("advanced to week %d", week)
	// the error is already logged and counted, in-memory state stays authoritative
	_ = s.Flush(ctx)
	return true
}

// CheckWeekProgression recommends advancing when today is the first day after
// the current week, at least 80% of that week qualified and the program is
// not at its last week. It never changes the state.
func (s *Store) CheckWeekProgression(today Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentWeek >= program.LastWeek {
		return false
	}
	weekEnd := s.weekStartDateLocked(s.state.CurrentWeek).AddDays(daysPerWeek - 1)
	if today != weekEnd.AddDays(1) {
		return false
	}
	return s.weeklyCompletionRatioLocked(s.state.CurrentWeek) >= progressionMinRatio
}

// MarkMorningGreeting reports whether the once-a-day morning greeting should
// be shown now, and marks it as shown for today if so.
func (s *Store) MarkMorningGreeting(now time.Time) bool {
	local := now.In(s.location)
	clock := local.Format(wakeTimeLayout)
	if clock < morningGreetingFrom || clock > morningGreetingUntil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := DateOf(local)
	record := s.state.DailyRecords[today]
	if record.MorningGreetingShown != nil && *record.MorningGreetingShown {
		return false
	}
	shown := true
	record.MorningGreetingShown = &shown
	s.putRecordLocked(today, record)
	return true
}

// IsPerfectDay reports whether all five check-ins of the day are done.
func (s *Store) IsPerfectDay(date Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.state.DailyRecords[date]
	return ok && record.IsPerfect()
}

// Flush writes the whole state to storage when it changed since the last
// successful flush. A clean store never writes, so slots updated by another
// writer in the meantime are left alone. A failure is logged and returned,
// but the in-memory state stays authoritative and the next flush retries.
func (s *Store) Flush(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.rev == s.flushedRev {
		s.mu.Unlock()
		log.Trace("progress state unchanged, nothing to flush")
		return nil
	}
	rev := s.rev
	slots, err := encodeSlots(s.state)
	s.mu.Unlock()

	ctx, span := tracing.GlobalTracer.Start(ctx, "progress.store.flush")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageWrite, err)
		s.flushFailed(err)
		return err
	}

	begin := time.Now()
	for _, key := range AllSlots {
		if writeErr := s.storage.Write(ctx, key, slots[key]); writeErr != nil {
			err = multierr.Append(err, fmt.Errorf("write slot [%s]: %w", key, writeErr))
		}
	}
	span.SetAttributes(attribute.Int("slots", len(slots)))

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageWrite, err)
		s.flushFailed(err)
		return err
	}

	s.mu.Lock()
	if rev > s.flushedRev {
		s.flushedRev = rev
	}
	s.mu.Unlock()

	if s.metricsManager != nil {
		s.metricsManager.CounterFlushes.Inc()
		s.metricsManager.HistogramFlushDuration.Observe(time.Since(begin).Seconds())
	}
	log.Tracef("progress state flushed in %s", time.Since(begin))
	return nil
}

func (s *Store) flushFailed(err error) {
	log.Errorf("flush progress state: %s", err)
	if s.metricsManager != nil {
		s.metricsManager.CounterFlushFailures.Inc()
	}
}

// Overview is the read model handed to presentation layers.
type Overview struct {
	Today                   Date                 `json:"today"`
	CurrentWeek             int                  `json:"currentWeek"`
	WeekStart               Date                 `json:"weekStart"`
	Program                 program.Week         `json:"program"`
	TodaySchedule           *program.DaySchedule `json:"todaySchedule,omitempty"`
	TodayRecord             *DayRecord           `json:"todayRecord,omitempty"`
	WeeklyCompletionPercent int                  `json:"weeklyCompletionPercent"`
	TotalWorkouts           int                  `json:"totalWorkouts"`
	Streak                  int                  `json:"streak"`
	LongestStreak           int                  `json:"longestStreak"`
	Badges                  []Badge              `json:"badges"`
	AvgEnergy               int                  `json:"avgEnergy"`
	PerfectDay              bool                 `json:"perfectDay"`
	ProgressionRecommended  bool                 `json:"progressionRecommended"`
}

// Overview projects the state for the given day. It has no side effects.
func (s *Store) Overview(today Date) Overview {
	recommended := s.CheckWeekProgression(today)

	s.mu.Lock()
	defer s.mu.Unlock()

	week := s.state.CurrentWeek
	weekProgram := program.GetOrFirst(week)
	ov := Overview{
		Today:                   today,
		CurrentWeek:             week,
		WeekStart:               s.weekStartDateLocked(week),
		Program:                 weekProgram,
		WeeklyCompletionPercent: int(math.Round(s.weeklyCompletionRatioLocked(week) * 100)),
		TotalWorkouts:           s.totalWorkoutsLocked(),
		Streak:                  s.computeStreakLocked(today),
		LongestStreak:           s.state.Progress.LongestStreak,
		Badges:                  DescribeBadges(s.computeBadgesLocked(today)),
		ProgressionRecommended:  recommended,
	}
	if day, ok := weekProgram.ForWeekday(today.Weekday()); ok {
		ov.TodaySchedule = &day
	}
	if record, ok := s.state.DailyRecords[today]; ok {
		rc := record.clone()
		ov.TodayRecord = &rc
		ov.PerfectDay = record.IsPerfect()
	}
	if avg, ok := s.averageEnergyLocked(week); ok {
		ov.AvgEnergy = int(math.Round(avg))
	}
	return ov
}
