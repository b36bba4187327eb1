package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects delivered events; safe for concurrent use.
type recorder struct {
	mu     sync.Mutex
	tag    string
	log    *[]string
	events []DueEvent
}

func (r *recorder) Notify(ev DueEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if r.log != nil {
		*r.log = append(*r.log, r.tag)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type panicObserver struct{}

func (panicObserver) Notify(DueEvent) { panic("boom") }

func dueEvent(id uint64) DueEvent {
	return DueEvent{MedicationID: id, Name: "Aspirin", DosageForm: "Tablet", Attributes: "Standard", DueAt: time.Now().UTC()}
}

func TestBus_DeliversInAttachOrder(t *testing.T) {
	var order []string
	first := &recorder{tag: "first", log: &order}
	second := &recorder{tag: "second", log: &order}

	b := NewBus()
	b.Attach(first)
	b.Attach(second)
	b.Notify(dueEvent(1))

	require.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestBus_DuplicateAttachDeliversTwice(t *testing.T) {
	r := &recorder{}
	b := NewBus()
	b.Attach(r)
	b.Attach(r)
	b.Notify(dueEvent(1))
	assert.Equal(t, 2, r.count())
}

func TestBus_DetachRemovesObserver(t *testing.T) {
	kept := &recorder{}
	gone := &recorder{}
	b := NewBus()
	b.Attach(kept)
	b.Attach(gone)
	b.Detach(gone)

	b.Notify(dueEvent(1))
	assert.Equal(t, 1, kept.count())
	assert.Equal(t, 0, gone.count())
}

// detachingObserver removes another observer from the bus while a
// delivery is in flight.
type detachingObserver struct {
	bus    *Bus
	target Observer
}

func (d *detachingObserver) Notify(DueEvent) { d.bus.Detach(d.target) }

func TestBus_SnapshotSemantics(t *testing.T) {
	// The first observer detaches the last one mid-delivery; the in-flight
	// notify still reaches everyone from its snapshot.
	b := NewBus()
	last := &recorder{}
	b.Attach(&detachingObserver{bus: b, target: last})
	b.Attach(last)

	b.Notify(dueEvent(1))
	assert.Equal(t, 1, last.count(), "in-flight delivery uses the snapshot")

	b.Notify(dueEvent(2))
	assert.Equal(t, 1, last.count(), "detached observer gets nothing afterwards")
}

func TestBus_PanickingObserverIsIsolated(t *testing.T) {
	after := &recorder{}
	b := NewBus()
	b.Attach(panicObserver{})
	b.Attach(after)

	require.NotPanics(t, func() { b.Notify(dueEvent(1)) })
	assert.Equal(t, 1, after.count(), "observers after the panicking one still notified")
}

func TestBus_ConcurrentAttachAndNotify(t *testing.T) {
	b := NewBus()
	r := &recorder{}
	b.Attach(r)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Attach(&recorder{})
		}()
		go func() {
			defer wg.Done()
			b.Notify(dueEvent(1))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.count())
}
