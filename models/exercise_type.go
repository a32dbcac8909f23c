package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseType is a catalog taxonomy node grouping exercises (e.g. "Cardio")
type ExerciseType struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
