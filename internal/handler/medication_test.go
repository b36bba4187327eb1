package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medication-reminder/internal/model"
	"github.com/medtrack/medication-reminder/internal/repository"
)

// fakeMedStore keeps medications in a map and lets tests inject version
// conflicts on AdvanceDueTime.
type fakeMedStore struct {
	meds      map[uint64]model.Medication
	conflicts int // AdvanceDueTime fails with ErrVersionConflict this many times
	advanced  []time.Time
}

func newFakeMedStore(meds ...model.Medication) *fakeMedStore {
	s := &fakeMedStore{meds: make(map[uint64]model.Medication)}
	for _, m := range meds {
		s.meds[m.ID] = m
	}
	return s
}

func (s *fakeMedStore) Create(_ context.Context, m *model.Medication) error {
	m.ID = uint64(len(s.meds) + 1)
	m.Version = 1
	s.meds[m.ID] = *m
	return nil
}

func (s *fakeMedStore) FindByUser(_ context.Context, userID uint64) ([]model.Medication, error) {
	var out []model.Medication
	for _, m := range s.meds {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMedStore) FindByID(_ context.Context, id uint64) (model.Medication, error) {
	m, ok := s.meds[id]
	if !ok {
		return model.Medication{}, repository.ErrMedicationNotFound
	}
	return m, nil
}

func (s *fakeMedStore) Update(_ context.Context, id uint64, name, dosageForm string, dosagesPerDay int) error {
	m, ok := s.meds[id]
	if !ok {
		return repository.ErrMedicationNotFound
	}
	m.Name, m.DosageForm, m.DosagesPerDay = name, dosageForm, dosagesPerDay
	s.meds[id] = m
	return nil
}

func (s *fakeMedStore) AdvanceDueTime(_ context.Context, id, version uint64, next time.Time) error {
	m, ok := s.meds[id]
	if !ok {
		return repository.ErrMedicationNotFound
	}
	if s.conflicts > 0 {
		s.conflicts--
		m.Version++ // simulate the concurrent writer that won the race
		s.meds[id] = m
		return repository.ErrVersionConflict
	}
	if m.Version != version {
		return repository.ErrVersionConflict
	}
	m.NextDueAt = next
	m.Version++
	s.meds[id] = m
	s.advanced = append(s.advanced, next)
	return nil
}

func (s *fakeMedStore) DeleteByID(_ context.Context, id uint64) error {
	if _, ok := s.meds[id]; !ok {
		return repository.ErrMedicationNotFound
	}
	delete(s.meds, id)
	return nil
}

// newMedRequest builds an authenticated echo context the way the JWT
// middleware would leave it, with :id bound when nonzero.
func newMedRequest(t *testing.T, method string, uid, id uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", uid)
	if id != 0 {
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(id, 10))
	}
	return c, rec
}

func sampleMed(id, uid uint64) model.Medication {
	return model.Medication{
		ID:            id,
		UserID:        uid,
		Name:          "Aspirin",
		DosageForm:    "Tablet",
		Attributes:    "Standard",
		DosagesPerDay: 2,
		NextDueAt:     time.Now().UTC().Add(-time.Minute),
		Version:       1,
	}
}

func TestDelete_RemovesMedication(t *testing.T) {
	store := newFakeMedStore(sampleMed(1, 7))
	h := NewMedicationHandler(store)

	c, rec := newMedRequest(t, http.MethodDelete, 7, 1)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The row is gone: listing is empty and a repeat delete is not found.
	remaining, err := store.FindByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	c, rec = newMedRequest(t, http.MethodDelete, 7, 1)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_UnknownID(t *testing.T) {
	h := NewMedicationHandler(newFakeMedStore())

	c, rec := newMedRequest(t, http.MethodDelete, 7, 99)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_ForeignMedicationLooksAbsent(t *testing.T) {
	store := newFakeMedStore(sampleMed(1, 8)) // owned by another user
	h := NewMedicationHandler(store)

	c, rec := newMedRequest(t, http.MethodDelete, 7, 1)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, store.meds, 1, "foreign rows stay untouched")
}

func TestTake_RetriesAfterVersionConflict(t *testing.T) {
	store := newFakeMedStore(sampleMed(1, 7))
	store.conflicts = 1
	h := NewMedicationHandler(store)

	c, rec := newMedRequest(t, http.MethodPost, 7, 1)
	require.NoError(t, h.Take(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.advanced, 1, "retry after the lost race lands the write")

	var resp struct {
		Status    string    `json:"status"`
		NextDueAt time.Time `json:"next_due_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "taken", resp.Status)
	// 2 dosages per day -> 12h ahead of the take.
	assert.WithinDuration(t, time.Now().UTC().Add(12*time.Hour), resp.NextDueAt, 5*time.Second)
}

func TestTake_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newFakeMedStore(sampleMed(1, 7))
	store.conflicts = casAttempts + 1
	h := NewMedicationHandler(store)

	c, rec := newMedRequest(t, http.MethodPost, 7, 1)
	require.NoError(t, h.Take(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, store.advanced)
}

func TestSnooze_MovesDueFifteenMinutes(t *testing.T) {
	store := newFakeMedStore(sampleMed(1, 7))
	h := NewMedicationHandler(store)

	c, rec := newMedRequest(t, http.MethodPost, 7, 1)
	require.NoError(t, h.Snooze(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.advanced, 1)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), store.advanced[0], 5*time.Second)
}
