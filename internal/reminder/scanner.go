package reminder

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/medtrack/medication-reminder/internal/model"
	"github.com/medtrack/medication-reminder/internal/repository"
)

// Store is the slice of medication persistence the scanner depends on.
// *repository.MedicationRepo satisfies it; tests supply fakes.
type Store interface {
	FindAll(ctx context.Context) ([]model.Medication, error)
	AdvanceDueTime(ctx context.Context, id, version uint64, next time.Time) error
}

// Scanner finds medications whose due time has elapsed, fans each one out
// through the bus and advances its due time. It holds no state between
// scans beyond its collaborators; every cycle reads fresh from the store.
type Scanner struct {
	store        Store
	bus          *Bus
	storeTimeout time.Duration
}

func NewScanner(store Store, bus *Bus) *Scanner {
	return &Scanner{store: store, bus: bus, storeTimeout: 5 * time.Second}
}

// Scan runs one due-check cycle against the given instant and returns the
// events that were fanned out. A medication is due when its due time is
// set and strictly before now. Store failures on one record are logged
// and do not abort the rest of the cycle.
//
// The due time is advanced once notification has been attempted, whether
// or not any observer succeeded; leaving it in the past would re-notify
// on every tick. The advance is a compare-and-swap: when it conflicts,
// a concurrent take/snooze already moved the due time and the scanner's
// reschedule is dropped rather than reverting the user's action.
func (s *Scanner) Scan(ctx context.Context, now time.Time) []DueEvent {
	listCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	meds, err := s.store.FindAll(listCtx)
	cancel()
	if err != nil {
		log.Printf("reminder: list medications: %v", err)
		return nil
	}

	var notified []DueEvent
	for _, med := range meds {
		if med.NextDueAt.IsZero() || !med.NextDueAt.Before(now) {
			continue
		}
		ev := DueEvent{
			MedicationID: med.ID,
			UserID:       med.UserID,
			Name:         med.Name,
			DosageForm:   med.DosageForm,
			Attributes:   med.Attributes,
			DueAt:        med.NextDueAt,
		}
		s.bus.Notify(ev)
		notified = append(notified, ev)

		next := now.Add(backgroundAdvance)
		updCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		err := s.store.AdvanceDueTime(updCtx, med.ID, med.Version, next)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrVersionConflict):
			log.Printf("reminder: medication %d rescheduled concurrently, keeping newer due time", med.ID)
		case errors.Is(err, repository.ErrMedicationNotFound):
			// Deleted mid-scan; nothing left to reschedule.
		default:
			log.Printf("reminder: advance medication %d: %v", med.ID, err)
		}
	}
	return notified
}
