package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"powerpulse/models"
)

// UserStore backs services.UserDirectory and services.UserLister
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore() *UserStore {
	return &UserStore{col: MongoDatabase.Collection(UsersCollection)}
}

// FindByUID returns the user for an external auth uid, nil when absent
func (s *UserStore) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"firebaseUid": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserIDs returns the external uids of all registered users
func (s *UserStore) ListUserIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"firebaseUid": 1})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var uids []string
	for cursor.Next(ctx) {
		var doc struct {
			FirebaseUID string `bson:"firebaseUid"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		uids = append(uids, doc.FirebaseUID)
	}
	return uids, cursor.Err()
}

// MongoCatalog backs services.CatalogStore
type MongoCatalog struct {
	exercises *mongo.Collection
	types     *mongo.Collection
}

func NewCatalog() *MongoCatalog {
	return &MongoCatalog{
		exercises: MongoDatabase.Collection(ExercisesCollection),
		types:     MongoDatabase.Collection(ExerciseTypesCollection),
	}
}

func (c *MongoCatalog) FindExercise(ctx context.Context, id primitive.ObjectID) (*models.Exercise, error) {
	var exercise models.Exercise
	err := c.exercises.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (c *MongoCatalog) FindExerciseType(ctx context.Context, id primitive.ObjectID) (*models.ExerciseType, error) {
	var exerciseType models.ExerciseType
	err := c.types.FindOne(ctx, bson.M{"_id": id}).Decode(&exerciseType)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exerciseType, nil
}

// NotificationStore backs services.NotificationWriter
type NotificationStore struct {
	col *mongo.Collection
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{col: MongoDatabase.Collection(NotificationsCollection)}
}

// InsertNotifications writes the batch unordered so one bad document does
// not stop the rest of the fan-out
func (s *NotificationStore) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	docs := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		docs = append(docs, n)
	}
	_, err := s.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}
