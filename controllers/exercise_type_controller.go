package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"powerpulse/apperrors"
	"powerpulse/db"
	"powerpulse/models"
)

// ExerciseTypeInput carries create/update fields for a taxonomy node
type ExerciseTypeInput struct {
	Title       string `json:"title" validate:"required,min=2"`
	Description string `json:"description"`
}

// ListExerciseTypes returns the whole taxonomy
func ListExerciseTypes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := db.GetCollection(db.ExerciseTypesCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to fetch exercise types", err))
		return
	}
	defer cursor.Close(ctx)

	var types []models.ExerciseType
	if err := cursor.All(ctx, &types); err != nil {
		respondError(c, apperrors.OperationFailed("Failed to decode exercise types", err))
		return
	}

	c.JSON(http.StatusOK, types)
}

// GetExerciseType returns one taxonomy node
func GetExerciseType(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var exerciseType models.ExerciseType
	if err := db.GetCollection(db.ExerciseTypesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&exerciseType); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperrors.NotFound("ExerciseType", c.Param("id")))
		} else {
			respondError(c, apperrors.OperationFailed("Failed to fetch exercise type", err))
		}
		return
	}

	c.JSON(http.StatusOK, exerciseType)
}

// CreateExerciseType adds a taxonomy node
func CreateExerciseType(c *gin.Context) {
	var input ExerciseTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}
	if err := validate.Struct(input); err != nil {
		respondError(c, fieldErrors(err))
		return
	}

	now := time.Now()
	exerciseType := models.ExerciseType{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.GetCollection(db.ExerciseTypesCollection).InsertOne(ctx, exerciseType); err != nil {
		respondError(c, wrapMongoError(err, "title", exerciseType.Title, "Failed to create exercise type"))
		return
	}

	c.JSON(http.StatusCreated, exerciseType)
}

// UpdateExerciseType edits a taxonomy node
func UpdateExerciseType(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 2 {
			respondError(c, apperrors.Validation("Title must be at least 2 characters long", map[string]string{"title": "Must be at least 2 characters long"}))
			return
		}
		set["title"] = title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.ExerciseType
	err = db.GetCollection(db.ExerciseTypesCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err == mongo.ErrNoDocuments {
		respondError(c, apperrors.NotFound("ExerciseType", c.Param("id")))
		return
	}
	if err != nil {
		respondError(c, wrapMongoError(err, "title", duplicateTitleValue(set, c.Param("id")), "Failed to update exercise type"))
		return
	}

	c.JSON(http.StatusOK, updated)
}

// typeDeleteGuard refuses deletion while exercises still reference the
// type; orphaned type ids on exercises would break completion
func typeDeleteGuard(referencing int64) error {
	if referencing > 0 {
		return apperrors.Validation("Exercise type is still in use", map[string]string{
			"id": "Cannot delete a type that exercises reference",
		})
	}
	return nil
}

// DeleteExerciseType removes a taxonomy node unless exercises still
// reference it
func DeleteExerciseType(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	referencing, err := db.GetCollection(db.ExercisesCollection).CountDocuments(ctx, bson.M{"type": oid})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to check references", err))
		return
	}
	if err := typeDeleteGuard(referencing); err != nil {
		respondError(c, err)
		return
	}

	result, err := db.GetCollection(db.ExerciseTypesCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to delete exercise type", err))
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, apperrors.NotFound("ExerciseType", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
