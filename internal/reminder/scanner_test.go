package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medication-reminder/internal/model"
	"github.com/medtrack/medication-reminder/internal/repository"
)

// fakeStore implements Store in memory for scanner tests.
type fakeStore struct {
	mu         sync.Mutex
	meds       []model.Medication
	findErr    error
	advanceErr map[uint64]error
	advanced   map[uint64]time.Time
}

func newFakeStore(meds ...model.Medication) *fakeStore {
	return &fakeStore{
		meds:       meds,
		advanceErr: map[uint64]error{},
		advanced:   map[uint64]time.Time{},
	}
}

func (f *fakeStore) FindAll(ctx context.Context) ([]model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]model.Medication, len(f.meds))
	copy(out, f.meds)
	return out, nil
}

func (f *fakeStore) AdvanceDueTime(ctx context.Context, id, version uint64, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.advanceErr[id]; err != nil {
		return err
	}
	f.advanced[id] = next
	return nil
}

func (f *fakeStore) advancedTo(id uint64) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.advanced[id]
	return t, ok
}

func med(id uint64, name string, due time.Time) model.Medication {
	return model.Medication{ID: id, UserID: 7, Name: name, DosageForm: "Tablet",
		Attributes: "Standard", DosagesPerDay: 1, NextDueAt: due, Version: 1}
}

func TestScanner_NotifiesOnlyElapsedDueTimes(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(
		med(1, "Aspirin", now.Add(-time.Minute)),  // due
		med(2, "Vitamin C", now.Add(time.Minute)), // not yet due
		med(3, "Allergy Med", now),                // exactly now: strictly-before check keeps it
		med(4, "Unset", time.Time{}),              // no due time at all
	)
	bus := NewBus()
	rec := &recorder{}
	bus.Attach(rec)

	events := NewScanner(store, bus).Scan(context.Background(), now)

	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].MedicationID)
	assert.Equal(t, "Aspirin", events[0].Name)
	assert.Equal(t, 1, rec.count())
}

func TestScanner_AdvancesPastNow(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	// Due three days ago: the advance must still land in the future, not
	// at dueAt+24h which would re-trigger next tick.
	store := newFakeStore(med(1, "Aspirin", now.Add(-72*time.Hour)))
	bus := NewBus()

	NewScanner(store, bus).Scan(context.Background(), now)

	next, ok := store.advancedTo(1)
	require.True(t, ok, "due medication must be rescheduled")
	assert.True(t, next.After(now), "next due time must be strictly after the scan instant")
	assert.Equal(t, now.Add(24*time.Hour), next)
}

func TestScanner_FindAllFailureReturnsNothing(t *testing.T) {
	store := newFakeStore(med(1, "Aspirin", time.Now().Add(-time.Hour)))
	store.findErr = errors.New("connection refused")
	bus := NewBus()
	rec := &recorder{}
	bus.Attach(rec)

	events := NewScanner(store, bus).Scan(context.Background(), time.Now().UTC())

	assert.Empty(t, events)
	assert.Equal(t, 0, rec.count())
}

func TestScanner_RecordFailureDoesNotAbortCycle(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(
		med(1, "Aspirin", now.Add(-time.Minute)),
		med(2, "Warfarin", now.Add(-time.Minute)),
		med(3, "Vitamin C", now.Add(-time.Minute)),
	)
	store.advanceErr[1] = errors.New("deadline exceeded")
	bus := NewBus()
	rec := &recorder{}
	bus.Attach(rec)

	events := NewScanner(store, bus).Scan(context.Background(), now)

	// All three were notified; the failed advance on the first record did
	// not stop the remaining two from being processed and persisted.
	assert.Len(t, events, 3)
	assert.Equal(t, 3, rec.count())
	_, ok := store.advancedTo(2)
	assert.True(t, ok)
	_, ok = store.advancedTo(3)
	assert.True(t, ok)
}

func TestScanner_VersionConflictYieldsToUserAction(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(med(1, "Aspirin", now.Add(-time.Minute)))
	store.advanceErr[1] = repository.ErrVersionConflict
	bus := NewBus()

	events := NewScanner(store, bus).Scan(context.Background(), now)

	// Notification still happened; the scanner just dropped its advance.
	assert.Len(t, events, 1)
	_, ok := store.advancedTo(1)
	assert.False(t, ok)
}

func TestScanner_AdvancesEvenWhenObserverPanics(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(med(1, "Aspirin", now.Add(-time.Minute)))
	bus := NewBus()
	bus.Attach(panicObserver{})

	NewScanner(store, bus).Scan(context.Background(), now)

	next, ok := store.advancedTo(1)
	require.True(t, ok, "advance is unconditional once notification was attempted")
	assert.True(t, next.After(now))
}
