package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"powerpulse/apperrors"
	"powerpulse/db"
	"powerpulse/middlewares"
	"powerpulse/models"
)

// ownedNotification scopes a single-notification lookup to the caller, so
// one user can never read or mutate another's inbox
func ownedNotification(uid string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "userId": uid}
}

// ListNotifications returns the caller's inbox, newest first
func ListNotifications(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}
	limit, offset := paginationParams(c, 10, 100)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := db.GetCollection(db.NotificationsCollection).Find(ctx, bson.M{"userId": identity.UID}, opts)
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to fetch notifications", err))
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		respondError(c, apperrors.OperationFailed("Failed to decode notifications", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadNotificationsCount returns the caller's unread badge count
func UnreadNotificationsCount(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.GetCollection(db.NotificationsCollection).CountDocuments(ctx, bson.M{
		"userId": identity.UID,
		"read":   false,
	})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to count notifications", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead flips the read flag on one of the caller's
// notifications
func MarkNotificationRead(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var notification models.Notification
	err = db.GetCollection(db.NotificationsCollection).
		FindOneAndUpdate(ctx, ownedNotification(identity.UID, oid), bson.M{"$set": bson.M{"read": true}}, opts).
		Decode(&notification)
	if err == mongo.ErrNoDocuments {
		respondError(c, apperrors.NotFound("Notification", c.Param("id")))
		return
	}
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to update notification", err))
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllNotificationsRead clears the caller's unread state
func MarkAllNotificationsRead(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.GetCollection(db.NotificationsCollection).UpdateMany(ctx,
		bson.M{"userId": identity.UID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to update notifications", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeleteNotification removes one of the caller's notifications
func DeleteNotification(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid id format", map[string]string{"id": "Must be a valid ObjectId"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection(db.NotificationsCollection).DeleteOne(ctx, ownedNotification(identity.UID, oid))
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to delete notification", err))
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, apperrors.NotFound("Notification", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
