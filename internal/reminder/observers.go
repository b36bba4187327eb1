package reminder

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medication-reminder/internal/queue"
	queue_publisher "github.com/medtrack/medication-reminder/internal/service"
)

// LogObserver writes reminder alerts to the process log. It is the
// in-process stand-in for a UI/push notification channel.
type LogObserver struct{}

func (LogObserver) Notify(ev DueEvent) {
	log.Printf("reminder: ALERT time to take %s (%s), attributes: %s",
		ev.Name, ev.DosageForm, ev.Attributes)
}

// QueueObserver publishes due events to the message broker so external
// delivery channels (and the bundled consumer writing logs/reminders.log)
// can pick them up. Publish failures are logged by the publisher and
// otherwise ignored; reminder delivery is best-effort.
type QueueObserver struct{}

func (QueueObserver) Notify(ev DueEvent) {
	event := queue.MedicationDueEvent{
		EventID:      uuid.NewString(),
		MedicationID: ev.MedicationID,
		UserID:       ev.UserID,
		Name:         ev.Name,
		DosageForm:   ev.DosageForm,
		Attributes:   ev.Attributes,
		DueAt:        ev.DueAt.UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishMedicationDue(ctx, event)
}
