package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"powerpulse/apperrors"
	"powerpulse/models"
)

// UserLister enumerates the external uids of all registered users
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// NotificationWriter persists a batch of notifications
type NotificationWriter interface {
	InsertNotifications(ctx context.Context, notifications []models.Notification) error
}

// Broadcaster pushes a transient event to connected clients. Best-effort,
// at-most-once.
type Broadcaster interface {
	Broadcast(event models.LiveEvent)
}

type fanoutJob struct {
	id        string
	exercise  models.Exercise
	typeTitle string
}

// NotificationFanout turns a new catalog exercise into one inbox
// notification per registered user, off the request path: ExerciseCreated
// enqueues and a background worker delivers.
type NotificationFanout struct {
	users         UserLister
	notifications NotificationWriter
	hub           Broadcaster
	jobs          chan fanoutJob
}

func NewNotificationFanout(users UserLister, notifications NotificationWriter, hub Broadcaster) *NotificationFanout {
	return &NotificationFanout{
		users:         users,
		notifications: notifications,
		hub:           hub,
		jobs:          make(chan fanoutJob, 64),
	}
}

// Start runs the delivery worker until ctx is cancelled
func (f *NotificationFanout) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-f.jobs:
				deliverCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := f.Deliver(deliverCtx, job.exercise, job.typeTitle); err != nil {
					log.Printf("fanout %s for exercise %s failed: %v", job.id, job.exercise.ID.Hex(), err)
				}
				cancel()
			}
		}
	}()
}

// ExerciseCreated enqueues delivery for a newly published exercise.
// Blocks only when the queue is full.
func (f *NotificationFanout) ExerciseCreated(exercise models.Exercise, typeTitle string) {
	f.jobs <- fanoutJob{id: uuid.NewString(), exercise: exercise, typeTitle: typeTitle}
}

// Deliver creates one NEW_EXERCISE notification per registered user, then
// broadcasts the live event. Per-user failures inside the batch are not
// rolled back; a partial fan-out stays partial.
func (f *NotificationFanout) Deliver(ctx context.Context, exercise models.Exercise, typeTitle string) error {
	uids, err := f.users.ListUserIDs(ctx)
	if err != nil {
		return apperrors.OperationFailed("Failed to enumerate users", err)
	}

	if len(uids) > 0 {
		now := time.Now()
		notifications := make([]models.Notification, 0, len(uids))
		for _, uid := range uids {
			notifications = append(notifications, models.Notification{
				UserID:  uid,
				Kind:    models.NotificationNewExercise,
				Title:   fmt.Sprintf("New Exercise: %s", exercise.Title),
				Message: fmt.Sprintf("A new %s exercise has been added!", typeTitle),
				Data: map[string]interface{}{
					"exerciseId": exercise.ID.Hex(),
					"difficulty": exercise.Difficulty,
				},
				Read:      false,
				CreatedAt: now,
			})
		}
		if err := f.notifications.InsertNotifications(ctx, notifications); err != nil {
			return apperrors.OperationFailed("Failed to insert notifications", err)
		}
	}

	f.hub.Broadcast(models.LiveEvent{
		Type:       models.EventExerciseCreated,
		ExerciseID: exercise.ID.Hex(),
		Title:      exercise.Title,
		TypeTitle:  typeTitle,
		Difficulty: exercise.Difficulty,
		Timestamp:  time.Now(),
	})
	return nil
}
