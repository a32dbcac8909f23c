package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"powerpulse/models"
)

func TestTotalPointsRemainderPolicy(t *testing.T) {
	entries := []models.ProgressEntry{
		{ExerciseTypeID: primitive.NewObjectID(), Level: 2, Points: 45},
		{ExerciseTypeID: primitive.NewObjectID(), Level: 0, Points: 30},
	}

	total, topLevel := totalPoints(entries, false)
	assert.Equal(t, 275, total, "each level counts as the full threshold")
	assert.Equal(t, 2, topLevel)
}

func TestTotalPointsLifetimePolicy(t *testing.T) {
	// Legacy variant: points already hold the lifetime total, so adding
	// level value on top would double-count
	entries := []models.ProgressEntry{
		{ExerciseTypeID: primitive.NewObjectID(), Level: 2, Points: 245},
		{ExerciseTypeID: primitive.NewObjectID(), Level: 0, Points: 30},
	}

	total, topLevel := totalPoints(entries, true)
	assert.Equal(t, 275, total)
	assert.Equal(t, 2, topLevel)
}

func TestTotalPointsEmptyProgress(t *testing.T) {
	total, topLevel := totalPoints(nil, false)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, topLevel)
}
