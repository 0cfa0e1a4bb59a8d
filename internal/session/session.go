// Package session owns the per-user state of one form session: preferences,
// the interaction log and the current recommendations.
package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/benvon/cinemate/internal/interaction"
	"github.com/benvon/cinemate/internal/models"
)

// ErrNotFound is returned when a session does not exist or has expired
var ErrNotFound = errors.New("session not found")

// Session bundles the three collections of one user session
type Session struct {
	ID              string                        `json:"id"`
	Domain          string                        `json:"domain"`
	Preferences     models.PreferenceSet          `json:"preferences"`
	Interactions    interaction.Log               `json:"interactions"`
	Recommendations []models.RecommendationRecord `json:"recommendations"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

// New returns a freshly initialized session with empty collections
func New(id, domain string, now time.Time) *Session {
	return &Session{
		ID:              id,
		Domain:          domain,
		Preferences:     models.PreferenceSet{},
		Interactions:    interaction.Log{},
		Recommendations: []models.RecommendationRecord{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy so callers never share collections across the session boundary
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Preferences = s.Preferences.Clone()
	out.Interactions = slices.Clone(s.Interactions)
	out.Recommendations = make([]models.RecommendationRecord, len(s.Recommendations))
	for i, r := range s.Recommendations {
		out.Recommendations[i] = cloneRecord(r)
	}
	return &out
}

// Record appends an interaction event stamped with now
func (s *Session) Record(now time.Time, message string, action models.Action) {
	s.Interactions = s.Interactions.Record(now, message, action)
}

func cloneRecord(r models.RecommendationRecord) models.RecommendationRecord {
	r.Selections = slices.Clone(r.Selections)
	r.Attributes = maps.Clone(r.Attributes)
	r.Matches = maps.Clone(r.Matches)
	return r
}

// Store persists sessions for at most their time to live
type Store interface {
	// Get returns the session or ErrNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Create stores s only if no session with the same ID exists and reports whether it did
	Create(ctx context.Context, s *Session) (bool, error)
	// Save overwrites s and refreshes its time to live
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
