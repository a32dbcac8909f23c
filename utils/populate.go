package utils

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"powerpulse/db"
	"powerpulse/models"
)

// SeedExerciseTypes creates the default taxonomy when the collection is empty
func SeedExerciseTypes() {
	collection := db.GetCollection(db.ExerciseTypesCollection)
	count, _ := collection.CountDocuments(context.Background(), bson.M{})
	if count > 0 {
		return
	}

	now := time.Now()
	types := []models.ExerciseType{
		{Title: "Cardio", Description: "Endurance and heart-rate work", CreatedAt: now, UpdatedAt: now},
		{Title: "Strength", Description: "Resistance and weight training", CreatedAt: now, UpdatedAt: now},
		{Title: "Flexibility", Description: "Stretching and mobility", CreatedAt: now, UpdatedAt: now},
	}

	var documents []interface{}
	for _, t := range types {
		documents = append(documents, t)
	}
	if _, err := collection.InsertMany(context.Background(), documents); err != nil {
		log.Printf("Failed to seed exercise types: %v", err)
	}
}

// PopulateTestUsers creates a couple of users for local development
func PopulateTestUsers() {
	collection := db.GetCollection(db.UsersCollection)
	count, _ := collection.CountDocuments(context.Background(), bson.M{})
	if count > 0 {
		return
	}

	now := time.Now()
	testUsers := []models.User{
		{
			FirebaseUID: "test-uid-1",
			Email:       "user1@example.com",
			Name:        "IronRunner",
			Progress:    []models.ProgressEntry{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			FirebaseUID: "test-uid-2",
			Email:       "user2@example.com",
			Name:        "LiftLord",
			Progress:    []models.ProgressEntry{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	var documents []interface{}
	for _, user := range testUsers {
		documents = append(documents, user)
	}
	if _, err := collection.InsertMany(context.Background(), documents); err != nil {
		log.Printf("Failed to seed test users: %v", err)
	}
}
