package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"powerpulse/apperrors"
	"powerpulse/db"
	"powerpulse/middlewares"
	"powerpulse/models"
)

// SyncUserRequest is sent by the client after provider sign-in
type SyncUserRequest struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name"`
	Picture     string `json:"picture"`
}

// UpdateProfileRequest carries the editable profile attributes
type UpdateProfileRequest struct {
	Name       string          `json:"name"`
	PictureURL string          `json:"pictureUrl"`
	Profile    *models.Profile `json:"profile"`
}

// SyncUser creates the user on first sign-in and refreshes the profile
// attributes on subsequent ones
func SyncUser(c *gin.Context) {
	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(c, fieldErrors(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	set := bson.M{
		"email":     req.Email,
		"updatedAt": now,
	}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Picture != "" {
		set["picture"] = models.Picture{
			URL:          req.Picture,
			PublicID:     "provider-" + req.FirebaseUID,
			ResourceType: "IMAGE",
		}
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"firebaseUid": req.FirebaseUID,
			"isAdmin":     false,
			"progress":    []models.ProgressEntry{},
			"createdAt":   now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var user models.User
	err := db.GetCollection(db.UsersCollection).
		FindOneAndUpdate(ctx, bson.M{"firebaseUid": req.FirebaseUID}, update, opts).
		Decode(&user)
	if err != nil {
		respondError(c, wrapMongoError(err, "email", req.Email, "Failed to create or update user"))
		return
	}

	c.JSON(http.StatusOK, user)
}

// Me returns the caller's user record
func Me(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.GetCollection(db.UsersCollection).FindOne(ctx, bson.M{"firebaseUid": identity.UID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		respondError(c, apperrors.NotFound("User", identity.UID))
		return
	}
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to load user", err))
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile modifies name, picture and fitness attributes
func UpdateProfile(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("Invalid request body", nil))
		return
	}
	if req.Profile != nil && req.Profile.FitnessLevel != "" && !models.IsValidDifficulty(req.Profile.FitnessLevel) {
		respondError(c, apperrors.Validation("Invalid fitness level", map[string]string{
			"fitnessLevel": "Must be one of: BEGINNER, INTERMEDIATE, ADVANCED",
		}))
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Profile != nil {
		set["profile"] = req.Profile
	}
	if req.PictureURL != "" {
		set["picture.url"] = req.PictureURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := db.GetCollection(db.UsersCollection).
		FindOneAndUpdate(ctx, bson.M{"firebaseUid": identity.UID}, bson.M{"$set": set}, opts).
		Decode(&user)
	if err == mongo.ErrNoDocuments {
		respondError(c, apperrors.NotFound("User", identity.UID))
		return
	}
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to update profile", err))
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the caller's account. Notifications go with it;
// nothing else cascades.
func DeleteUser(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection(db.UsersCollection).DeleteOne(ctx, bson.M{"firebaseUid": identity.UID})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to delete user", err))
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, apperrors.NotFound("User", identity.UID))
		return
	}

	// Account is gone; an orphaned inbox is harmless, so a failure here
	// does not fail the request
	if _, err := db.GetCollection(db.NotificationsCollection).DeleteMany(ctx, bson.M{"userId": identity.UID}); err != nil {
		log.Printf("Failed to delete notifications for %s: %v", identity.UID, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CompleteExercise awards the exercise's points to the caller and returns
// the updated progress entry
func CompleteExercise(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)

	progress, err := progressService.CompleteExercise(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
