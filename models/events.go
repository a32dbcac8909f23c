package models

import "time"

// Live event types broadcast over the websocket hub
const (
	EventExerciseCreated = "exercise_created"
)

// LiveEvent is a transient broadcast message for connected clients.
// Delivery is best-effort; events are dropped when nobody listens.
type LiveEvent struct {
	Type       string    `json:"type"`
	ExerciseID string    `json:"exerciseId,omitempty"`
	Title      string    `json:"title,omitempty"`
	TypeTitle  string    `json:"typeTitle,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
