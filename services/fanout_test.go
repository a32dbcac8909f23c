package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"powerpulse/apperrors"
	"powerpulse/models"
)

type fakeNotificationWriter struct {
	mu       sync.Mutex
	inserted []models.Notification
	err      error
}

func (f *fakeNotificationWriter) InsertNotifications(_ context.Context, notifications []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, notifications...)
	return nil
}

func (f *fakeNotificationWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeBroadcaster struct {
	events []models.LiveEvent
}

func (f *fakeBroadcaster) Broadcast(event models.LiveEvent) {
	f.events = append(f.events, event)
}

func testExercise() models.Exercise {
	return models.Exercise{
		ID:         primitive.NewObjectID(),
		Title:      "Burpees",
		Difficulty: "INTERMEDIATE",
		TypeID:     primitive.NewObjectID(),
	}
}

func TestDeliverCreatesOneNotificationPerUser(t *testing.T) {
	users := newFakeUsers("uid-1", "uid-2", "uid-3")
	writer := &fakeNotificationWriter{}
	hub := &fakeBroadcaster{}
	fanout := NewNotificationFanout(users, writer, hub)

	exercise := testExercise()
	require.NoError(t, fanout.Deliver(context.Background(), exercise, "Cardio"))

	require.Len(t, writer.inserted, 3)
	recipients := map[string]bool{}
	for _, n := range writer.inserted {
		recipients[n.UserID] = true
		assert.Equal(t, models.NotificationNewExercise, n.Kind)
		assert.Equal(t, "New Exercise: Burpees", n.Title)
		assert.Equal(t, "A new Cardio exercise has been added!", n.Message)
		assert.Equal(t, exercise.ID.Hex(), n.Data["exerciseId"])
		assert.Equal(t, "INTERMEDIATE", n.Data["difficulty"])
		assert.False(t, n.Read)
	}
	assert.Len(t, recipients, 3, "each user gets exactly one notification")
}

func TestDeliverBroadcastsLiveEvent(t *testing.T) {
	users := newFakeUsers("uid-1")
	hub := &fakeBroadcaster{}
	fanout := NewNotificationFanout(users, &fakeNotificationWriter{}, hub)

	exercise := testExercise()
	require.NoError(t, fanout.Deliver(context.Background(), exercise, "Cardio"))

	require.Len(t, hub.events, 1)
	assert.Equal(t, models.EventExerciseCreated, hub.events[0].Type)
	assert.Equal(t, exercise.ID.Hex(), hub.events[0].ExerciseID)
	assert.Equal(t, "Cardio", hub.events[0].TypeTitle)
}

func TestDeliverWithNoUsersStillBroadcasts(t *testing.T) {
	users := newFakeUsers()
	writer := &fakeNotificationWriter{}
	hub := &fakeBroadcaster{}
	fanout := NewNotificationFanout(users, writer, hub)

	require.NoError(t, fanout.Deliver(context.Background(), testExercise(), "Cardio"))
	assert.Empty(t, writer.inserted)
	assert.Len(t, hub.events, 1)
}

func TestDeliverInsertFailure(t *testing.T) {
	users := newFakeUsers("uid-1")
	writer := &fakeNotificationWriter{err: errors.New("write concern failed")}
	hub := &fakeBroadcaster{}
	fanout := NewNotificationFanout(users, writer, hub)

	err := fanout.Deliver(context.Background(), testExercise(), "Cardio")
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
	assert.Empty(t, hub.events, "no broadcast when the batch never landed")
}

func TestWorkerDeliversEnqueuedExercises(t *testing.T) {
	users := newFakeUsers("uid-1", "uid-2")
	writer := &fakeNotificationWriter{}
	hub := &fakeBroadcaster{}
	fanout := NewNotificationFanout(users, writer, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fanout.Start(ctx)

	fanout.ExerciseCreated(testExercise(), "Cardio")

	assert.Eventually(t, func() bool {
		return writer.count() == 2
	}, time.Second, 10*time.Millisecond)
}
