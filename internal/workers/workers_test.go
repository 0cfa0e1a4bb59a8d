package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benvon/cinemate/internal/models"
	"github.com/benvon/cinemate/internal/queue"
	"go.uber.org/zap"
)

type stubAcker struct {
	mu     sync.Mutex
	acks   int
	nacks  int
	ackErr error
}

func (s *stubAcker) Ack(uint64, bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks++
	return s.ackErr
}

func (s *stubAcker) Nack(uint64, bool, bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nacks++
	return nil
}

func (s *stubAcker) Reject(uint64, bool) error { return nil }

func (s *stubAcker) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acks, s.nacks
}

func interaction(sessionID, domain string, action models.Action) *queue.Event {
	return queue.NewInteractionEvent(sessionID, domain, models.InteractionEvent{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Message:   "test",
		Action:    action,
	})
}

func TestStatsAggregator_Record(t *testing.T) {
	t.Parallel()

	a := NewStatsAggregator(zap.NewNop())
	events := []*queue.Event{
		queue.NewSessionEvent(queue.EventTypeSessionStarted, "s1", "movie", time.Now()),
		interaction("s1", "movie", models.ActionGenresSelected),
		interaction("s1", "movie", models.ActionConfigSaved),
		interaction("s1", "movie", models.ActionRecommendationGenerated),
		interaction("s2", "car", models.ActionConfigSaved),
		interaction("s2", "car", models.ActionRecommendationGenerated),
		interaction("s2", "car", models.ActionRecommendationGenerated),
		queue.NewSessionEvent(queue.EventTypeSessionEnded, "s2", "car", time.Now()),
	}
	for _, ev := range events {
		if err := a.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	s := a.Snapshot()
	if s.Events != len(events) {
		t.Errorf("Expected %d events, got %d", len(events), s.Events)
	}
	if s.Sessions != 2 {
		t.Errorf("Expected 2 distinct sessions, got %d", s.Sessions)
	}
	if s.Generations != 3 {
		t.Errorf("Expected 3 generations, got %d", s.Generations)
	}
	if s.ByAction[models.ActionConfigSaved] != 2 {
		t.Errorf("Expected 2 config_saved, got %d", s.ByAction[models.ActionConfigSaved])
	}
	if s.ByDomain["movie"] != 4 || s.ByDomain["car"] != 4 {
		t.Errorf("Unexpected per-domain counts %v", s.ByDomain)
	}
	if s.SessionsEnded != 1 {
		t.Errorf("Expected 1 ended session, got %d", s.SessionsEnded)
	}

	// Snapshot maps are copies
	s.ByDomain["movie"] = 100
	if a.Snapshot().ByDomain["movie"] != 4 {
		t.Error("Expected snapshot to be detached from the aggregator")
	}
}

func TestStatsAggregator_RecordMalformed(t *testing.T) {
	t.Parallel()

	a := NewStatsAggregator(nil)
	tests := []struct {
		name  string
		event *queue.Event
	}{
		{name: "nil event", event: nil},
		{name: "missing session", event: &queue.Event{Type: queue.EventTypeInteraction}},
		{name: "missing type", event: &queue.Event{SessionID: "s1"}},
	}
	for _, tt := range tests {
		if err := a.Record(tt.event); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("%s: expected ErrMalformedEvent, got %v", tt.name, err)
		}
	}
	if a.Snapshot().Events != 0 {
		t.Error("Expected malformed events to be ignored")
	}
}

func TestStatsAggregator_Flush(t *testing.T) {
	t.Parallel()

	a := NewStatsAggregator(zap.NewNop())
	_ = a.Record(interaction("s1", "movie", models.ActionRecommendationGenerated))

	s := a.Flush()
	if s.Events != 1 || s.Generations != 1 {
		t.Errorf("Expected flushed summary with 1 generation, got %+v", s)
	}
	after := a.Snapshot()
	if after.Events != 0 || after.Sessions != 0 || len(after.ByAction) != 0 {
		t.Errorf("Expected reset counters after flush, got %+v", after)
	}
}

func TestStatsAggregator_ProcessMessage(t *testing.T) {
	t.Parallel()

	a := NewStatsAggregator(zap.NewNop())

	acker := &stubAcker{}
	ok := &queue.Message{Event: interaction("s1", "movie", models.ActionConfigSaved), DeliveryTag: 1, Acker: acker}
	if err := a.ProcessMessage(context.Background(), ok); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	bad := &queue.Message{Event: &queue.Event{}, DeliveryTag: 2, Acker: acker}
	if err := a.ProcessMessage(context.Background(), bad); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("Expected ErrMalformedEvent, got %v", err)
	}
	acks, nacks := acker.counts()
	if acks != 1 || nacks != 1 {
		t.Errorf("Expected 1 ack and 1 nack, got %d and %d", acks, nacks)
	}

	failing := &queue.Message{
		Event:       interaction("s1", "movie", models.ActionConfigSaved),
		DeliveryTag: 3,
		Acker:       &stubAcker{ackErr: errors.New("channel closed")},
	}
	if err := a.ProcessMessage(context.Background(), failing); err == nil {
		t.Error("Expected ack failure to be returned")
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	a := NewStatsAggregator(zap.NewNop())
	acker := &stubAcker{}
	msgs := make(chan *queue.Message, 3)
	errs := make(chan error, 1)

	msgs <- &queue.Message{Event: interaction("s1", "movie", models.ActionGenresSelected), DeliveryTag: 1, Acker: acker}
	msgs <- &queue.Message{Event: interaction("s2", "car", models.ActionTraitSelected), DeliveryTag: 2, Acker: acker}
	msgs <- &queue.Message{Event: nil, DeliveryTag: 3, Acker: acker}
	errs <- errors.New("transient")
	close(errs)
	close(msgs)

	done := make(chan struct{})
	go func() {
		Run(context.Background(), a, msgs, errs, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return when the message channel closes")
	}

	if got := a.Snapshot().Sessions; got != 2 {
		t.Errorf("Expected 2 sessions, got %d", got)
	}
	acks, nacks := acker.counts()
	if acks != 2 || nacks != 1 {
		t.Errorf("Expected 2 acks and 1 nack, got %d and %d", acks, nacks)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, NewStatsAggregator(nil), make(chan *queue.Message), make(chan error), zap.NewNop())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to stop on cancel")
	}
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "", wantErr: false},
		{spec: "@every 30s", wantErr: false},
		{spec: "*/5 * * * *", wantErr: false},
		{spec: "every minute", wantErr: true},
	}
	for _, tt := range tests {
		s, err := NewScheduler(tt.spec, NewStatsAggregator(nil), zap.NewNop())
		if (err != nil) != tt.wantErr {
			t.Errorf("NewScheduler(%q): expected error %v, got %v", tt.spec, tt.wantErr, err)
			continue
		}
		if s != nil {
			s.Start()
			s.Stop()
		}
	}
}
