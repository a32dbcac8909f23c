package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPointsAwarded is used when an exercise is created without an
// explicit point value.
const DefaultPointsAwarded = 10

// DifficultyLevels are the allowed exercise difficulty tiers
var DifficultyLevels = []string{"BEGINNER", "INTERMEDIATE", "ADVANCED"}

// MuscleGroups are the allowed target-muscle values
var MuscleGroups = []string{
	"CHEST",
	"BACK",
	"SHOULDERS",
	"BICEPS",
	"TRICEPS",
	"LEGS",
	"CORE",
	"FULL_BODY",
}

// IsValidDifficulty reports whether d is a known difficulty tier
func IsValidDifficulty(d string) bool {
	for _, level := range DifficultyLevels {
		if level == d {
			return true
		}
	}
	return false
}

// IsValidMuscle reports whether m is a known muscle group
func IsValidMuscle(m string) bool {
	for _, muscle := range MuscleGroups {
		if muscle == m {
			return true
		}
	}
	return false
}

// Exercise is a catalog item, created by admins and referenced (never
// mutated) by the completion flow
type Exercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Equipment     string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	TypeID        primitive.ObjectID `bson:"type" json:"typeId"`
	Difficulty    string             `bson:"difficulty" json:"difficulty"`
	Muscles       []string           `bson:"muscles" json:"muscles"`
	Instructions  []string           `bson:"instructions" json:"instructions"`
	PointsAwarded int                `bson:"pointsAwarded" json:"pointsAwarded"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseWithType is an exercise denormalized with its resolved type for
// list/detail responses
type ExerciseWithType struct {
	Exercise
	Type ExerciseType `json:"type"`
}
