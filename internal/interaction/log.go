// Package interaction implements the append-only per-session event log and its CSV projection.
package interaction

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/benvon/cinemate/internal/models"
)

// TimestampLayout is the wall-clock format used in exports
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the CSV header row
var Header = []string{"Timestamp", "Message", "Action"}

// Log is an ordered, append-only sequence of interaction events.
// Record never touches the receiver's backing array, so a Log held by one
// session snapshot is never changed through another.
type Log []models.InteractionEvent

// Record returns a new log with an event appended. Action tags are free-form.
func (l Log) Record(now time.Time, message string, action models.Action) Log {
	out := make(Log, len(l), len(l)+1)
	copy(out, l)
	return append(out, models.InteractionEvent{
		Timestamp: now,
		Message:   message,
		Action:    action,
	})
}

// Events returns a copy of the recorded events
func (l Log) Events() []models.InteractionEvent {
	return slices.Clone([]models.InteractionEvent(l))
}

// Last returns the most recent event
func (l Log) Last() (models.InteractionEvent, bool) {
	if len(l) == 0 {
		return models.InteractionEvent{}, false
	}
	return l[len(l)-1], true
}

// Count returns the number of events tagged with action
func (l Log) Count(action models.Action) int {
	n := 0
	for _, e := range l {
		if e.Action == action {
			n++
		}
	}
	return n
}

// WriteCSV writes the log as CSV: the header row followed by one row per event
// in insertion order. Fields holding commas, quotes or newlines are quoted.
func (l Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range l {
		row := []string{e.Timestamp.Format(TimestampLayout), e.Message, string(e.Action)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
