package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressEntry is a user's points/level record for one exercise type.
// At most one entry per (user, exerciseTypeId) exists; points hold the
// progress toward the next level.
type ProgressEntry struct {
	ExerciseTypeID primitive.ObjectID `bson:"exerciseTypeId" json:"exerciseTypeId"`
	Level          int                `bson:"level" json:"level"`
	Points         int                `bson:"points" json:"points"`
}

// Picture holds an uploaded profile image reference
type Picture struct {
	URL          string `bson:"url" json:"url"`
	PublicID     string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	ResourceType string `bson:"resourceType,omitempty" json:"resourceType,omitempty"` // "IMAGE" or "VIDEO"
}

// Profile holds optional fitness attributes
type Profile struct {
	Height       float64  `bson:"height,omitempty" json:"height,omitempty"`
	Weight       float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	Goals        []string `bson:"goals,omitempty" json:"goals,omitempty"`
	FitnessLevel string   `bson:"fitnessLevel,omitempty" json:"fitnessLevel,omitempty"` // one of DifficultyLevels
}

// User defines a user entity, keyed by the external auth subject id
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FirebaseUID string             `bson:"firebaseUid" json:"firebaseUid"`
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	IsAdmin     bool               `bson:"isAdmin" json:"isAdmin"`
	Picture     *Picture           `bson:"picture,omitempty" json:"picture,omitempty"`
	Profile     *Profile           `bson:"profile,omitempty" json:"profile,omitempty"`
	Progress    []ProgressEntry    `bson:"progress" json:"progress"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserProgress is the completion result returned to the client: the updated
// ledger entry denormalized with its resolved exercise type.
type UserProgress struct {
	ExerciseType ExerciseType `json:"exerciseType"`
	Level        int          `json:"level"`
	Points       int          `json:"points"`
}
