package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"powerpulse/models"
	"powerpulse/services"
)

// MongoProgressLedger implements services.ProgressLedger on the embedded
// progress array of the user document. Updates carry the previously read
// level/points in the filter, so a concurrent completion makes the write
// match nothing instead of overwriting it.
type MongoProgressLedger struct {
	users *mongo.Collection
}

func NewProgressLedger() *MongoProgressLedger {
	return &MongoProgressLedger{users: MongoDatabase.Collection(UsersCollection)}
}

func (l *MongoProgressLedger) FindEntry(ctx context.Context, uid string, typeID primitive.ObjectID) (*models.ProgressEntry, error) {
	var user models.User
	err := l.users.FindOne(ctx, bson.M{"firebaseUid": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, entry := range user.Progress {
		if entry.ExerciseTypeID == typeID {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

func (l *MongoProgressLedger) InsertEntry(ctx context.Context, uid string, entry models.ProgressEntry) error {
	// The $ne guard keeps the (user, type) pair unique even when two first
	// completions race.
	filter := bson.M{
		"firebaseUid":            uid,
		"progress.exerciseTypeId": bson.M{"$ne": entry.ExerciseTypeID},
	}
	update := bson.M{"$push": bson.M{"progress": entry}}
	result, err := l.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return services.ErrEntryExists
	}
	return nil
}

func (l *MongoProgressLedger) SwapEntry(ctx context.Context, uid string, old, next models.ProgressEntry) (bool, error) {
	filter := bson.M{
		"firebaseUid": uid,
		"progress": bson.M{"$elemMatch": bson.M{
			"exerciseTypeId": old.ExerciseTypeID,
			"level":          old.Level,
			"points":         old.Points,
		}},
	}
	update := bson.M{"$set": bson.M{
		"progress.$.level":  next.Level,
		"progress.$.points": next.Points,
	}}
	result, err := l.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}
