package services

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"powerpulse/apperrors"
	"powerpulse/models"
)

// PointsPerLevel is the level-up threshold
const PointsPerLevel = 100

// ErrEntryExists is returned by ProgressLedger.InsertEntry when another
// writer created the entry first.
var ErrEntryExists = errors.New("progress entry already exists")

// ProgressLedger encapsulates the per-user progress array: at most one
// entry per exercise type, updated with compare-and-swap semantics so two
// concurrent completions cannot silently lose an update.
type ProgressLedger interface {
	// FindEntry returns the user's entry for the type, or nil when absent.
	FindEntry(ctx context.Context, uid string, typeID primitive.ObjectID) (*models.ProgressEntry, error)
	// InsertEntry adds a first entry for the type; ErrEntryExists when one
	// appeared concurrently.
	InsertEntry(ctx context.Context, uid string, entry models.ProgressEntry) error
	// SwapEntry replaces the entry only if its stored level/points still
	// match old. Returns false when the entry changed underneath.
	SwapEntry(ctx context.Context, uid string, old, next models.ProgressEntry) (bool, error)
}

// CatalogStore reads immutable catalog data
type CatalogStore interface {
	FindExercise(ctx context.Context, id primitive.ObjectID) (*models.Exercise, error)
	FindExerciseType(ctx context.Context, id primitive.ObjectID) (*models.ExerciseType, error)
}

// ProgressService orchestrates exercise completion: resolve the exercise
// and its type, advance the user's ledger entry, persist, return the
// updated entry.
type ProgressService struct {
	users   UserDirectory
	catalog CatalogStore
	ledger  ProgressLedger

	// keepLifetimePoints switches to the legacy leveling variant: points
	// accumulate forever and only the level is raised on a crossing.
	keepLifetimePoints bool
	maxAttempts        int
}

func NewProgressService(users UserDirectory, catalog CatalogStore, ledger ProgressLedger, keepLifetimePoints bool) *ProgressService {
	return &ProgressService{
		users:              users,
		catalog:            catalog,
		ledger:             ledger,
		keepLifetimePoints: keepLifetimePoints,
		maxAttempts:        3,
	}
}

// KeepsLifetimePoints reports whether the legacy leveling variant is
// active, where stored points are lifetime totals instead of remainders.
func (s *ProgressService) KeepsLifetimePoints() bool {
	return s.keepLifetimePoints
}

// CompleteExercise awards the exercise's points to the caller's entry for
// the exercise's type and returns the updated entry with its resolved type.
func (s *ProgressService) CompleteExercise(ctx context.Context, id Identity, exerciseID string) (*models.UserProgress, error) {
	if id.UID == "" {
		return nil, apperrors.Unauthenticated()
	}
	user, err := s.users.FindByUID(ctx, id.UID)
	if err != nil {
		return nil, apperrors.OperationFailed("Failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.Unauthenticated()
	}

	oid, err := primitive.ObjectIDFromHex(exerciseID)
	if err != nil {
		return nil, apperrors.Validation("Invalid exercise id format", map[string]string{
			"exerciseId": "Must be a valid ObjectId",
		})
	}

	exercise, err := s.catalog.FindExercise(ctx, oid)
	if err != nil {
		return nil, apperrors.OperationFailed("Failed to load exercise", err)
	}
	if exercise == nil {
		return nil, apperrors.NotFound("Exercise", exerciseID)
	}

	exerciseType, err := s.catalog.FindExerciseType(ctx, exercise.TypeID)
	if err != nil {
		return nil, apperrors.OperationFailed("Failed to load exercise type", err)
	}
	if exerciseType == nil {
		// Dangling type reference on the exercise document
		return nil, apperrors.NotFound("ExerciseType", exercise.TypeID.Hex())
	}

	entry, err := s.applyPoints(ctx, id.UID, exercise.TypeID, exercise.PointsAwarded)
	if err != nil {
		return nil, err
	}

	return &models.UserProgress{
		ExerciseType: *exerciseType,
		Level:        entry.Level,
		Points:       entry.Points,
	}, nil
}

// applyPoints runs the read-modify-write cycle under an optimistic retry
// loop. A concurrent completion invalidates the swap filter and the loop
// re-reads.
func (s *ProgressService) applyPoints(ctx context.Context, uid string, typeID primitive.ObjectID, points int) (*models.ProgressEntry, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		current, err := s.ledger.FindEntry(ctx, uid, typeID)
		if err != nil {
			return nil, apperrors.OperationFailed("Failed to read progress", err)
		}

		if current == nil {
			next := s.advance(models.ProgressEntry{ExerciseTypeID: typeID}, points)
			err = s.ledger.InsertEntry(ctx, uid, next)
			if errors.Is(err, ErrEntryExists) {
				continue
			}
			if err != nil {
				return nil, apperrors.OperationFailed("Failed to save progress", err)
			}
			return &next, nil
		}

		next := s.advance(*current, points)
		swapped, err := s.ledger.SwapEntry(ctx, uid, *current, next)
		if err != nil {
			return nil, apperrors.OperationFailed("Failed to save progress", err)
		}
		if swapped {
			return &next, nil
		}
		log.Printf("progress swap conflict for user %s type %s, retrying", uid, typeID.Hex())
	}
	return nil, apperrors.OperationFailed("Progress update kept conflicting", nil)
}

// advance applies the leveling rule. Primary policy: stored points count
// toward the next level and reset to the remainder on every crossing.
// Legacy policy keeps the lifetime total and only raises the level.
func (s *ProgressService) advance(entry models.ProgressEntry, awarded int) models.ProgressEntry {
	total := entry.Points + awarded
	if s.keepLifetimePoints {
		level := total / PointsPerLevel
		if level < entry.Level {
			level = entry.Level
		}
		return models.ProgressEntry{ExerciseTypeID: entry.ExerciseTypeID, Level: level, Points: total}
	}
	return models.ProgressEntry{
		ExerciseTypeID: entry.ExerciseTypeID,
		Level:          entry.Level + total/PointsPerLevel,
		Points:         total % PointsPerLevel,
	}
}
