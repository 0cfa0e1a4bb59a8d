package workers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/benvon/cinemate/internal/metrics"
	"github.com/benvon/cinemate/internal/models"
	"github.com/benvon/cinemate/internal/queue"
	"go.uber.org/zap"
)

// ErrMalformedEvent is returned for events that can never be counted
var ErrMalformedEvent = errors.New("malformed event")

// Summary is a snapshot of the aggregated counters since the last reset
type Summary struct {
	Since         time.Time               `json:"since"`
	Events        int                     `json:"events"`
	ByAction      map[models.Action]int   `json:"by_action"`
	ByDomain      map[string]int          `json:"by_domain"`
	ByType        map[queue.EventType]int `json:"by_type"`
	Sessions      int                     `json:"distinct_sessions"`
	Generations   int                     `json:"generations"`
	SessionsEnded int                     `json:"sessions_ended"`
}

// StatsAggregator counts consumed events in memory
type StatsAggregator struct {
	mu       sync.Mutex
	since    time.Time
	events   int
	byAction map[models.Action]int
	byDomain map[string]int
	byType   map[queue.EventType]int
	sessions map[string]struct{}
	ended    int
	now      func() time.Time
	logger   *zap.Logger
}

// NewStatsAggregator creates an empty aggregator
func NewStatsAggregator(logger *zap.Logger) *StatsAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &StatsAggregator{now: time.Now, logger: logger}
	a.reset()
	return a
}

func (a *StatsAggregator) reset() {
	a.since = a.now()
	a.events = 0
	a.ended = 0
	a.byAction = make(map[models.Action]int)
	a.byDomain = make(map[string]int)
	a.byType = make(map[queue.EventType]int)
	a.sessions = make(map[string]struct{})
}

// Record adds one event to the counters
func (a *StatsAggregator) Record(event *queue.Event) error {
	if event == nil || event.SessionID == "" || event.Type == "" {
		return ErrMalformedEvent
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.events++
	a.byType[event.Type]++
	if event.Domain != "" {
		a.byDomain[event.Domain]++
	}
	a.sessions[event.SessionID] = struct{}{}

	switch event.Type {
	case queue.EventTypeInteraction:
		if event.Action != "" {
			a.byAction[event.Action]++
		}
	case queue.EventTypeSessionEnded:
		a.ended++
	}
	return nil
}

// Snapshot returns the current counters without resetting them
func (a *StatsAggregator) Snapshot() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *StatsAggregator) snapshotLocked() Summary {
	return Summary{
		Since:         a.since,
		Events:        a.events,
		ByAction:      maps.Clone(a.byAction),
		ByDomain:      maps.Clone(a.byDomain),
		ByType:        maps.Clone(a.byType),
		Sessions:      len(a.sessions),
		Generations:   a.byAction[models.ActionRecommendationGenerated],
		SessionsEnded: a.ended,
	}
}

// Flush logs the summary and starts a new window
func (a *StatsAggregator) Flush() Summary {
	a.mu.Lock()
	s := a.snapshotLocked()
	a.reset()
	a.mu.Unlock()

	a.logger.Info("interaction_stats",
		zap.Time("since", s.Since),
		zap.Int("events", s.Events),
		zap.Int("distinct_sessions", s.Sessions),
		zap.Int("generations", s.Generations),
		zap.Int("sessions_ended", s.SessionsEnded),
		zap.Any("by_action", s.ByAction),
		zap.Any("by_domain", s.ByDomain),
	)
	return s
}

// ProcessMessage records the event and acknowledges it. Malformed events are
// rejected without requeue so they land in the dead letter queue.
func (a *StatsAggregator) ProcessMessage(_ context.Context, msg queue.MessageInterface) error {
	event := msg.GetEvent()
	if err := a.Record(event); err != nil {
		eventType := "unknown"
		if event != nil && event.Type != "" {
			eventType = string(event.Type)
		}
		metrics.RecordWorkerEvent(eventType, err)
		if nackErr := msg.Nack(false); nackErr != nil {
			return fmt.Errorf("failed to reject event: %w", nackErr)
		}
		return err
	}
	metrics.RecordWorkerEvent(string(event.Type), nil)
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to acknowledge event: %w", err)
	}
	return nil
}
