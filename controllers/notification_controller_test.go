package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOwnedNotificationScopesToCaller(t *testing.T) {
	id := primitive.NewObjectID()
	filter := ownedNotification("uid-1", id)

	assert.Equal(t, id, filter["_id"])
	assert.Equal(t, "uid-1", filter["userId"], "lookup must carry the caller's uid")
	assert.Len(t, filter, 2)
}
