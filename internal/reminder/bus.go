// Package reminder implements the due-medication reminder core: the
// notification bus that fans out due events to registered observers, the
// scanner that finds overdue medications and reschedules them, the clock
// that drives the scan on a fixed period, and the pure dosage schedule
// computations used by take and snooze actions.
package reminder

import (
	"log"
	"sync"
	"time"
)

// DueEvent describes a medication at the instant the scanner determined
// it was due. It is ephemeral and never persisted.
type DueEvent struct {
	MedicationID uint64
	UserID       uint64
	Name         string
	DosageForm   string
	Attributes   string
	DueAt        time.Time
}

// Observer is a registered handler invoked for each due-medication event.
type Observer interface {
	Notify(ev DueEvent)
}

// Bus maintains the observer registry and fans out due events. Delivery
// is synchronous and in attach order. Attach, Detach and Notify are safe
// for concurrent use; Notify iterates a snapshot of the registry so a
// concurrent Detach never affects an in-flight delivery.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewBus() *Bus { return &Bus{} }

// Attach registers an observer. Duplicate registrations are allowed and
// result in duplicate delivery; this is best-effort by contract.
func (b *Bus) Attach(o Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, o)
	b.mu.Unlock()
}

// Detach removes the first registered entry equal to o. Unknown observers
// are ignored.
func (b *Bus) Detach(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.observers {
		if cur == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers the event to every observer registered at the moment of
// the call. A panicking observer is isolated so the remaining observers
// still receive the event.
func (b *Bus) Notify(ev DueEvent) {
	b.mu.RLock()
	snapshot := make([]Observer, len(b.observers))
	copy(snapshot, b.observers)
	b.mu.RUnlock()

	for _, o := range snapshot {
		deliver(o, ev)
	}
}

func deliver(o Observer, ev DueEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("reminder: observer panicked on medication %d: %v", ev.MedicationID, r)
		}
	}()
	o.Notify(ev)
}
