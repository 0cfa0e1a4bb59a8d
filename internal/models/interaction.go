package models

import "time"

// Action tags an interaction milestone. Tags are free-form; the constants below
// are the ones the service records itself.
type Action string

const (
	ActionGenresSelected          Action = "genres_selected"
	ActionTraitSelected           Action = "trait_selected"
	ActionConfigSaved             Action = "config_saved"
	ActionRecommendationGenerated Action = "recommendation_generated"
)

// InteractionEvent is one logged milestone of a session. Never mutated once created.
type InteractionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Action    Action    `json:"action"`
}
