package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"powerpulse/apperrors"
	"powerpulse/models"
)

// fakeUsers implements UserDirectory and UserLister in memory
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(uids ...string) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.User)}
	for _, uid := range uids {
		f.users[uid] = &models.User{FirebaseUID: uid, Email: uid + "@example.com"}
	}
	return f
}

func (f *fakeUsers) FindByUID(_ context.Context, uid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[uid], nil
}

func (f *fakeUsers) ListUserIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uids := make([]string, 0, len(f.users))
	for uid := range f.users {
		uids = append(uids, uid)
	}
	return uids, nil
}

// fakeCatalog implements CatalogStore in memory
type fakeCatalog struct {
	exercises map[primitive.ObjectID]*models.Exercise
	types     map[primitive.ObjectID]*models.ExerciseType
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		exercises: make(map[primitive.ObjectID]*models.Exercise),
		types:     make(map[primitive.ObjectID]*models.ExerciseType),
	}
}

func (f *fakeCatalog) FindExercise(_ context.Context, id primitive.ObjectID) (*models.Exercise, error) {
	return f.exercises[id], nil
}

func (f *fakeCatalog) FindExerciseType(_ context.Context, id primitive.ObjectID) (*models.ExerciseType, error) {
	return f.types[id], nil
}

func (f *fakeCatalog) addType(title string) models.ExerciseType {
	t := models.ExerciseType{ID: primitive.NewObjectID(), Title: title}
	f.types[t.ID] = &t
	return t
}

func (f *fakeCatalog) addExercise(typeID primitive.ObjectID, points int) models.Exercise {
	e := models.Exercise{
		ID:            primitive.NewObjectID(),
		Title:         "Exercise " + primitive.NewObjectID().Hex()[:6],
		TypeID:        typeID,
		Difficulty:    "BEGINNER",
		PointsAwarded: points,
	}
	f.exercises[e.ID] = &e
	return e
}

type ledgerKey struct {
	uid    string
	typeID primitive.ObjectID
}

// fakeLedger implements ProgressLedger with CAS semantics in memory.
// swapFailures forces conflicts to exercise the retry loop.
type fakeLedger struct {
	mu           sync.Mutex
	entries      map[ledgerKey]models.ProgressEntry
	swapFailures int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[ledgerKey]models.ProgressEntry)}
}

func (f *fakeLedger) FindEntry(_ context.Context, uid string, typeID primitive.ObjectID) (*models.ProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.entries[ledgerKey{uid, typeID}]; ok {
		found := entry
		return &found, nil
	}
	return nil, nil
}

func (f *fakeLedger) InsertEntry(_ context.Context, uid string, entry models.ProgressEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey{uid, entry.ExerciseTypeID}
	if _, ok := f.entries[key]; ok {
		return ErrEntryExists
	}
	f.entries[key] = entry
	return nil
}

func (f *fakeLedger) SwapEntry(_ context.Context, uid string, old, next models.ProgressEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.swapFailures > 0 {
		f.swapFailures--
		return false, nil
	}
	key := ledgerKey{uid, old.ExerciseTypeID}
	current, ok := f.entries[key]
	if !ok || current.Level != old.Level || current.Points != old.Points {
		return false, nil
	}
	f.entries[key] = next
	return true, nil
}

func (f *fakeLedger) set(uid string, entry models.ProgressEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[ledgerKey{uid, entry.ExerciseTypeID}] = entry
}

func newTestService(users *fakeUsers, catalog *fakeCatalog, ledger *fakeLedger) *ProgressService {
	return NewProgressService(users, catalog, ledger, false)
}

func TestCompleteExerciseFirstCompletion(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	strength := catalog.addType("Strength")
	exercise := catalog.addExercise(strength.ID, 10)

	svc := newTestService(users, catalog, ledger)
	progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 0, progress.Level)
	assert.Equal(t, 10, progress.Points)
	assert.Equal(t, strength.Title, progress.ExerciseType.Title)
}

func TestCompleteExerciseAccumulatesWithoutCrossing(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 20)

	svc := newTestService(users, catalog, ledger)
	for i := 1; i <= 4; i++ {
		progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, 0, progress.Level)
		assert.Equal(t, 20*i, progress.Points)
	}
}

func TestCompleteExerciseLevelUpResetsToRemainder(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	ledger.set("uid-1", models.ProgressEntry{ExerciseTypeID: cardio.ID, Level: 0, Points: 95})

	svc := newTestService(users, catalog, ledger)
	progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 1, progress.Level)
	assert.Equal(t, 5, progress.Points)
}

func TestCompleteExerciseMultiLevelJump(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 250)

	ledger.set("uid-1", models.ProgressEntry{ExerciseTypeID: cardio.ID, Level: 3, Points: 95})

	svc := newTestService(users, catalog, ledger)
	progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	require.NoError(t, err)

	// 95 + 250 = 345: three crossings, remainder 45
	assert.Equal(t, 6, progress.Level)
	assert.Equal(t, 45, progress.Points)
}

func TestCompleteExerciseLegacyPolicyKeepsLifetimePoints(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	ledger.set("uid-1", models.ProgressEntry{ExerciseTypeID: cardio.ID, Level: 0, Points: 95})

	svc := NewProgressService(users, catalog, ledger, true)
	assert.True(t, svc.KeepsLifetimePoints())

	progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 1, progress.Level)
	assert.Equal(t, 105, progress.Points)
}

func TestCompleteExerciseOneEntryPerType(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	strength := catalog.addType("Strength")
	run := catalog.addExercise(cardio.ID, 10)
	lift := catalog.addExercise(strength.ID, 15)

	svc := newTestService(users, catalog, ledger)
	for i := 0; i < 3; i++ {
		_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, run.ID.Hex())
		require.NoError(t, err)
		_, err = svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, lift.ID.Hex())
		require.NoError(t, err)
	}

	assert.Len(t, ledger.entries, 2)
	assert.Equal(t, 30, ledger.entries[ledgerKey{"uid-1", cardio.ID}].Points)
	assert.Equal(t, 45, ledger.entries[ledgerKey{"uid-1", strength.ID}].Points)
}

func TestCompleteExerciseUnauthenticated(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	svc := newTestService(users, catalog, ledger)

	_, err := svc.CompleteExercise(context.Background(), Identity{}, exercise.ID.Hex())
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
	assert.Empty(t, ledger.entries, "no write on auth failure")

	_, err = svc.CompleteExercise(context.Background(), Identity{UID: "unknown"}, exercise.ID.Hex())
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
	assert.Empty(t, ledger.entries)
}

func TestCompleteExerciseMissingExercise(t *testing.T) {
	users := newFakeUsers("uid-1")
	svc := newTestService(users, newFakeCatalog(), newFakeLedger())

	_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, primitive.NewObjectID().Hex())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCompleteExerciseMalformedID(t *testing.T) {
	users := newFakeUsers("uid-1")
	svc := newTestService(users, newFakeCatalog(), newFakeLedger())

	_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, "not-an-oid")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestCompleteExerciseDanglingTypeReference(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	// Exercise points at a type that was never registered
	exercise := catalog.addExercise(primitive.NewObjectID(), 10)

	svc := newTestService(users, catalog, newFakeLedger())
	_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCompleteExerciseRetriesSwapConflicts(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	ledger.set("uid-1", models.ProgressEntry{ExerciseTypeID: cardio.ID, Level: 0, Points: 40})
	ledger.swapFailures = 2 // conflicts on the first two attempts

	svc := newTestService(users, catalog, ledger)
	progress, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Points)
}

func TestCompleteExerciseGivesUpAfterRepeatedConflicts(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	ledger.set("uid-1", models.ProgressEntry{ExerciseTypeID: cardio.ID, Level: 0, Points: 40})
	ledger.swapFailures = 100

	svc := newTestService(users, catalog, ledger)
	_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
}

// Two concurrent completions against the CAS ledger must both land:
// the retry loop turns the historic lost-update race into two applied
// increments.
func TestCompleteExerciseConcurrentCompletions(t *testing.T) {
	users := newFakeUsers("uid-1")
	catalog := newFakeCatalog()
	ledger := newFakeLedger()
	cardio := catalog.addType("Cardio")
	exercise := catalog.addExercise(cardio.ID, 10)

	svc := newTestService(users, catalog, ledger)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CompleteExercise(context.Background(), Identity{UID: "uid-1"}, exercise.ID.Hex())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	applied := 0
	for err := range errs {
		if err == nil {
			applied++
		}
	}
	entry := ledger.entries[ledgerKey{"uid-1", cardio.ID}]
	assert.Equal(t, applied*10, entry.Level*PointsPerLevel+entry.Points,
		"every successful completion is reflected in the ledger")
	assert.GreaterOrEqual(t, applied, 1)
}
