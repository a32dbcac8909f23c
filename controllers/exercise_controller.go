package controllers

import (
	"context"
	"net/http"
	"regexp"
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

// ExerciseInput carries create/update fields for a catalog exercise
type ExerciseInput struct {
	Title         string   `json:"title" validate:"required,min=3"`
	Description   string   `json:"description" validate:"required"`
	Equipment     string   `json:"equipment"`
	TypeID        string   `json:"typeId" validate:"required"`
	Difficulty    string   `json:"difficulty" validate:"required"`
	Muscles       []string `json:"muscles" validate:"required,min=1"`
	Instructions  []string `json:"instructions" validate:"required,min=1"`
	PointsAwarded int      `json:"pointsAwarded"`
}

// validateExerciseInput checks the enum and reference fields that struct
// tags cannot express. Returns the parsed type id on success.
func validateExerciseInput(input *ExerciseInput) (primitive.ObjectID, error) {
	typeID, err := primitive.ObjectIDFromHex(input.TypeID)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid typeId format", map[string]string{
			"typeId": "Must be a valid ObjectId",
		})
	}
	if !models.IsValidDifficulty(input.Difficulty) {
		return primitive.NilObjectID, apperrors.Validation("Invalid difficulty level", map[string]string{
			"difficulty": "Must be one of: " + strings.Join(models.DifficultyLevels, ", "),
		})
	}
	for _, muscle := range input.Muscles {
		if !models.IsValidMuscle(muscle) {
			return primitive.NilObjectID, apperrors.Validation("Invalid muscle group", map[string]string{
				"muscles": "Must be one of: " + strings.Join(models.MuscleGroups, ", "),
			})
		}
	}
	if input.PointsAwarded < 0 {
		return primitive.NilObjectID, apperrors.Validation("Invalid points value", map[string]string{
			"pointsAwarded": "Must be a positive integer",
		})
	}
	return typeID, nil
}

// ListExercises returns the catalog page matching the query filters
func ListExercises(c *gin.Context) {
	limit, offset := paginationParams(c, 10, 100)

	query := bson.M{}
	if search := c.Query("search"); search != "" {
		escaped := regexp.QuoteMeta(search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": "^" + escaped, "$options": "i"}},
			{"description": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	if typeID := c.Query("typeId"); typeID != "" {
		oid, err := primitive.ObjectIDFromHex(typeID)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid typeId format", map[string]string{"typeId": "Must be a valid ObjectId"}))
			return
		}
		query["type"] = oid
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		if !models.IsValidDifficulty(difficulty) {
			respondError(c, apperrors.Validation("Invalid difficulty level", map[string]string{
				"difficulty": "Must be one of: " + strings.Join(models.DifficultyLevels, ", "),
			}))
			return
		}
		query["difficulty"] = difficulty
	}
	if muscle := c.Query("muscle"); muscle != "" {
		if !models.IsValidMuscle(muscle) {
			respondError(c, apperrors.Validation("Invalid muscle group", map[string]string{
				"muscle": "Must be one of: " + strings.Join(models.MuscleGroups, ", "),
			}))
			return
		}
		query["muscles"] = muscle
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection(db.ExercisesCollection)
	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to count exercises", err))
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := collection.Find(ctx, query, findOpts)
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to fetch exercises", err))
		return
	}
	defer cursor.Close(ctx)

	var exercises []models.Exercise
	if err := cursor.All(ctx, &exercises); err != nil {
		respondError(c, apperrors.OperationFailed("Failed to decode exercises", err))
		return
	}

	resolved, err := resolveTypes(ctx, exercises)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exercises": resolved,
		"total":     total,
		"hasMore":   int64(offset+len(exercises)) < total,
	})
}

// GetExercise returns a single exercise with its resolved type
func GetExercise(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid exercise id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var exercise models.Exercise
	if err := db.GetCollection(db.ExercisesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&exercise); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperrors.NotFound("Exercise", c.Param("id")))
		} else {
			respondError(c, apperrors.OperationFailed("Failed to fetch exercise", err))
		}
		return
	}

	resolved, err := resolveTypes(ctx, []models.Exercise{exercise})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved[0])
}

// CreateExercise publishes a new catalog exercise and fans out the
// NEW_EXERCISE notifications
func CreateExercise(c *gin.Context) {
	var input ExerciseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}
	if err := validate.Struct(input); err != nil {
		respondError(c, fieldErrors(err))
		return
	}
	typeID, err := validateExerciseInput(&input)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exerciseType models.ExerciseType
	if err := db.GetCollection(db.ExerciseTypesCollection).FindOne(ctx, bson.M{"_id": typeID}).Decode(&exerciseType); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperrors.NotFound("ExerciseType", input.TypeID))
		} else {
			respondError(c, apperrors.OperationFailed("Failed to fetch exercise type", err))
		}
		return
	}

	points := input.PointsAwarded
	if points == 0 {
		points = models.DefaultPointsAwarded
	}

	now := time.Now()
	exercise := models.Exercise{
		ID:            primitive.NewObjectID(),
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Equipment:     input.Equipment,
		TypeID:        typeID,
		Difficulty:    input.Difficulty,
		Muscles:       input.Muscles,
		Instructions:  input.Instructions,
		PointsAwarded: points,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := db.GetCollection(db.ExercisesCollection).InsertOne(ctx, exercise); err != nil {
		respondError(c, wrapMongoError(err, "title", exercise.Title, "Failed to create exercise"))
		return
	}

	// One notification per registered user, delivered off the request path
	fanout.ExerciseCreated(exercise, exerciseType.Title)

	c.JSON(http.StatusCreated, models.ExerciseWithType{Exercise: exercise, Type: exerciseType})
}

// UpdateExercise edits catalog fields; all fields are optional
func UpdateExercise(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid exercise id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	var input struct {
		Title         *string  `json:"title"`
		Description   *string  `json:"description"`
		Equipment     *string  `json:"equipment"`
		TypeID        *string  `json:"typeId"`
		Difficulty    *string  `json:"difficulty"`
		Muscles       []string `json:"muscles"`
		Instructions  []string `json:"instructions"`
		PointsAwarded *int     `json:"pointsAwarded"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 3 {
			respondError(c, apperrors.Validation("Title must be at least 3 characters long", map[string]string{"title": "Must be at least 3 characters long"}))
			return
		}
		set["title"] = title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Equipment != nil {
		set["equipment"] = *input.Equipment
	}
	if input.Difficulty != nil {
		if !models.IsValidDifficulty(*input.Difficulty) {
			respondError(c, apperrors.Validation("Invalid difficulty level", map[string]string{
				"difficulty": "Must be one of: " + strings.Join(models.DifficultyLevels, ", "),
			}))
			return
		}
		set["difficulty"] = *input.Difficulty
	}
	if input.Muscles != nil {
		if len(input.Muscles) == 0 {
			respondError(c, apperrors.Validation("Muscles must be a non-empty array", map[string]string{"muscles": "At least one muscle group is required"}))
			return
		}
		for _, muscle := range input.Muscles {
			if !models.IsValidMuscle(muscle) {
				respondError(c, apperrors.Validation("Invalid muscle group", map[string]string{
					"muscles": "Must be one of: " + strings.Join(models.MuscleGroups, ", "),
				}))
				return
			}
		}
		set["muscles"] = input.Muscles
	}
	if input.Instructions != nil {
		if len(input.Instructions) == 0 {
			respondError(c, apperrors.Validation("Instructions must be a non-empty array", map[string]string{"instructions": "At least one instruction is required"}))
			return
		}
		set["instructions"] = input.Instructions
	}
	if input.PointsAwarded != nil {
		if *input.PointsAwarded <= 0 {
			respondError(c, apperrors.Validation("Invalid points value", map[string]string{"pointsAwarded": "Must be a positive integer"}))
			return
		}
		set["pointsAwarded"] = *input.PointsAwarded
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if input.TypeID != nil {
		typeID, err := primitive.ObjectIDFromHex(*input.TypeID)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid typeId format", map[string]string{"typeId": "Must be a valid ObjectId"}))
			return
		}
		count, err := db.GetCollection(db.ExerciseTypesCollection).CountDocuments(ctx, bson.M{"_id": typeID})
		if err != nil {
			respondError(c, apperrors.OperationFailed("Failed to check exercise type", err))
			return
		}
		if count == 0 {
			respondError(c, apperrors.NotFound("ExerciseType", *input.TypeID))
			return
		}
		set["type"] = typeID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Exercise
	err = db.GetCollection(db.ExercisesCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err == mongo.ErrNoDocuments {
		respondError(c, apperrors.NotFound("Exercise", c.Param("id")))
		return
	}
	if err != nil {
		respondError(c, wrapMongoError(err, "title", duplicateTitleValue(set, c.Param("id")), "Failed to update exercise"))
		return
	}

	resolved, rerr := resolveTypes(ctx, []models.Exercise{updated})
	if rerr != nil {
		respondError(c, rerr)
		return
	}
	c.JSON(http.StatusOK, resolved[0])
}

// DeleteExercise removes a catalog exercise
func DeleteExercise(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid exercise id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection(db.ExercisesCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to delete exercise", err))
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, apperrors.NotFound("Exercise", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// resolveTypes denormalizes exercises with their types in one query
func resolveTypes(ctx context.Context, exercises []models.Exercise) ([]models.ExerciseWithType, error) {
	ids := make([]primitive.ObjectID, 0, len(exercises))
	seen := make(map[primitive.ObjectID]bool)
	for _, exercise := range exercises {
		if !seen[exercise.TypeID] {
			seen[exercise.TypeID] = true
			ids = append(ids, exercise.TypeID)
		}
	}

	byID := make(map[primitive.ObjectID]models.ExerciseType, len(ids))
	if len(ids) > 0 {
		cursor, err := db.GetCollection(db.ExerciseTypesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, apperrors.OperationFailed("Failed to fetch exercise types", err)
		}
		defer cursor.Close(ctx)

		var types []models.ExerciseType
		if err := cursor.All(ctx, &types); err != nil {
			return nil, apperrors.OperationFailed("Failed to decode exercise types", err)
		}
		for _, t := range types {
			byID[t.ID] = t
		}
	}

	resolved := make([]models.ExerciseWithType, 0, len(exercises))
	for _, exercise := range exercises {
		exerciseType, ok := byID[exercise.TypeID]
		if !ok {
			return nil, apperrors.NotFound("ExerciseType", exercise.TypeID.Hex())
		}
		resolved = append(resolved, models.ExerciseWithType{Exercise: exercise, Type: exerciseType})
	}
	return resolved, nil
}
