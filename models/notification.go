package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds
const (
	NotificationNewExercise = "NEW_EXERCISE"
	NotificationLevelUp     = "LEVEL_UP"
	NotificationAchievement = "ACHIEVEMENT"
)

// Notification is a per-user inbox item, created by the fan-out and only
// ever mutated through its read flag
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string                 `bson:"userId" json:"userId"` // external auth uid
	Kind      string                 `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Read      bool                   `bson:"read" json:"read"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
