package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medication-reminder/internal/interaction"
	"github.com/medtrack/medication-reminder/internal/model"
	"github.com/medtrack/medication-reminder/internal/reminder"
	"github.com/medtrack/medication-reminder/internal/repository"
)

// casAttempts bounds the optimistic-concurrency retries for take/snooze.
// A retry only happens when the reminder scan advanced the same row
// between our read and write, which resolves within an attempt or two.
const casAttempts = 3

// MedicationStore is the slice of medication persistence the handlers
// depend on. *repository.MedicationRepo satisfies it; tests supply
// fakes.
type MedicationStore interface {
	Create(ctx context.Context, m *model.Medication) error
	FindByUser(ctx context.Context, userID uint64) ([]model.Medication, error)
	FindByID(ctx context.Context, id uint64) (model.Medication, error)
	Update(ctx context.Context, id uint64, name, dosageForm string, dosagesPerDay int) error
	AdvanceDueTime(ctx context.Context, id, version uint64, next time.Time) error
	DeleteByID(ctx context.Context, id uint64) error
}

// MedicationHandler exposes the medication CRUD and take/snooze actions.
type MedicationHandler struct {
	Meds MedicationStore
}

func NewMedicationHandler(meds MedicationStore) *MedicationHandler {
	if meds == nil {
		panic("nil store passed to NewMedicationHandler")
	}
	return &MedicationHandler{Meds: meds}
}

// ----- DTOs -----

type medicationResp struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	DosageForm    string    `json:"dosage_form"`
	Attributes    string    `json:"attributes"`
	DosagesPerDay int       `json:"dosages_per_day"`
	NextDueAt     time.Time `json:"next_due_at"`
}

func toMedicationResp(m model.Medication) medicationResp {
	return medicationResp{
		ID:            m.ID,
		Name:          m.Name,
		DosageForm:    m.DosageForm,
		Attributes:    m.Attributes,
		DosagesPerDay: m.DosagesPerDay,
		NextDueAt:     m.NextDueAt,
	}
}

// List handles GET /v1/medications and returns the caller's medications.
func (h *MedicationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meds, err := h.Meds.FindByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]medicationResp, 0, len(meds))
	for _, m := range meds {
		out = append(out, toMedicationResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Add handles POST /v1/medications. It derives the attribute label from
// the food-sensitivity flag, runs the interaction check against the
// user's existing medications and saves the record with its initial due
// time (explicit start_time, or now plus a short offset so the first
// reminder fires almost immediately). Any interaction warning is
// returned alongside the saved medication, never blocking the add.
func (h *MedicationHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name          string `json:"name"`
		DosageForm    string `json:"dosage_form"`
		FoodSensitive bool   `json:"food_sensitive"`
		DosagesPerDay int    `json:"dosages_per_day"`
		StartTime     string `json:"start_time"` // optional RFC3339 override
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	form := strings.TrimSpace(body.DosageForm)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if form == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dosage_form is required"})
	}

	now := time.Now().UTC()
	dueAt := reminder.InitialDue(now)
	if s := strings.TrimSpace(body.StartTime); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time format"})
		}
		dueAt = t.UTC()
	}

	med := model.NewMedication(uid, name, form,
		model.AttributeFlags{FoodSensitive: body.FoodSensitive}, body.DosagesPerDay, dueAt)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Meds.FindByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	warning := interaction.Check(med, existing)
	if warning != "" {
		log.Printf("interaction: user %d adding %q: %s", uid, med.Name, warning)
	}

	if err := h.Meds.Create(ctx, &med); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create medication"})
	}

	resp := echo.Map{"medication": toMedicationResp(med)}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /v1/medications/:id and rewrites name, dosage form
// and dosages per day. The due cycle is untouched.
func (h *MedicationHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid medication id"})
	}
	var body struct {
		Name          string `json:"name"`
		DosageForm    string `json:"dosage_form"`
		DosagesPerDay int    `json:"dosages_per_day"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	form := strings.TrimSpace(body.DosageForm)
	if name == "" || form == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and dosage_form are required"})
	}
	dosages := body.DosagesPerDay
	if dosages < 1 {
		dosages = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	med, err := h.findOwned(ctx, id, uid)
	if err != nil {
		return medNotFoundOr500(c, err)
	}
	if err := h.Meds.Update(ctx, med.ID, name, form, dosages); err != nil {
		return medNotFoundOr500(c, err)
	}
	fresh, err := h.Meds.FindByID(ctx, med.ID)
	if err != nil {
		return medNotFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, toMedicationResp(fresh))
}

// Delete handles DELETE /v1/medications/:id. Deletion is valid in any
// due-cycle phase.
func (h *MedicationHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid medication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.findOwned(ctx, id, uid); err != nil {
		return medNotFoundOr500(c, err)
	}
	if err := h.Meds.DeleteByID(ctx, id); err != nil {
		return medNotFoundOr500(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Take handles POST /v1/medications/:id/take. The next due time moves to
// now + 24h divided by the dosage count.
func (h *MedicationHandler) Take(c echo.Context) error {
	return h.reschedule(c, "taken", func(now time.Time, m model.Medication) time.Time {
		return reminder.NextAfterTake(now, m.DosagesPerDay)
	})
}

// Snooze handles POST /v1/medications/:id/snooze. The next due time moves
// to now + 15 minutes regardless of the dosage configuration.
func (h *MedicationHandler) Snooze(c echo.Context) error {
	return h.reschedule(c, "snoozed", func(now time.Time, m model.Medication) time.Time {
		return reminder.NextAfterSnooze(now)
	})
}

// reschedule applies a user-initiated due-time change under optimistic
// concurrency. When the version CAS loses to a concurrent scan advance,
// the medication is re-read and the write retried so the user action is
// never silently reverted.
func (h *MedicationHandler) reschedule(c echo.Context, status string, next func(time.Time, model.Medication) time.Time) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid medication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		med, err := h.findOwned(ctx, id, uid)
		if err != nil {
			return medNotFoundOr500(c, err)
		}
		now := time.Now().UTC()
		due := next(now, med)
		err = h.Meds.AdvanceDueTime(ctx, med.ID, med.Version, due)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return medNotFoundOr500(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": status, "next_due_at": due})
	}
	return c.JSON(http.StatusConflict, echo.Map{"error": "medication is being rescheduled, retry"})
}

// findOwned loads a medication and verifies ownership. Foreign rows are
// reported as not found so ids are not probeable across accounts.
func (h *MedicationHandler) findOwned(ctx context.Context, id, uid uint64) (model.Medication, error) {
	med, err := h.Meds.FindByID(ctx, id)
	if err != nil {
		return model.Medication{}, err
	}
	if med.UserID != uid {
		return model.Medication{}, repository.ErrMedicationNotFound
	}
	return med, nil
}

func medNotFoundOr500(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrMedicationNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage failure"})
}

// getUserID extracts the user_id set by the JWT middleware and converts
// it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
