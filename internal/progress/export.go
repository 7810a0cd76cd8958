package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const exportFileNameFormat = "fitness-tracker-backup-%s.json"

// Export is the backup document of the whole program state.
type Export struct {
	CurrentWeek int                `json:"currentWeek"`
	DailyData   map[Date]DayRecord `json:"dailyData"`
	Progress    Summary            `json:"progress"`
	StartDate   Date               `json:"startDate"`
	ExportDate  time.Time          `json:"exportDate"`
}

// ExportFileName is the suggested file name of a backup taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf(exportFileNameFormat, DateOf(now).String())
}

// Export serializes the current state into a backup document.
func (s *Store) Export(now time.Time) ([]byte, error) {
	state := s.Snapshot()
	doc := Export{
		CurrentWeek: state.CurrentWeek,
		DailyData:   state.DailyRecords,
		Progress:    state.Progress,
		StartDate:   state.StartDate,
		ExportDate:  now.UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// ParseExport reads a backup document back into a program state.
func ParseExport(data []byte) (ProgramState, error) {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return ProgramState{}, fmt.Errorf("%w: malformed export: %w", ErrValidation, err)
	}
	if doc.StartDate.IsZero() {
		return ProgramState{}, fmt.Errorf("%w: export without start date", ErrValidation)
	}

	state := ProgramState{
		CurrentWeek:  clampWeek(doc.CurrentWeek),
		StartDate:    doc.StartDate,
		DailyRecords: make(map[Date]DayRecord, len(doc.DailyData)),
		Progress:     doc.Progress,
	}
	for d, r := range doc.DailyData {
		state.DailyRecords[d] = sanitizeRecord(d, r)
	}
	if state.Progress.Badges == nil {
		state.Progress.Badges = []BadgeID{}
	}
	return state, nil
}

// Import replaces the whole state with a backup document and flushes it.
// Only an invalid document is an error: once parsed, the imported state is
// authoritative and a failed flush is retried by the next one.
func (s *Store) Import(ctx context.Context, data []byte) error {
	state, err := ParseExport(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = state
	s.recomputeLocked()
	s.changedLocked()
	s.mu.Unlock()

	log.Infof("progress state imported: week %d, %d daily records", state.CurrentWeek, len(state.DailyRecords))
	// the error is already logged and counted
	_ = s.Flush(ctx)
	return nil
}
