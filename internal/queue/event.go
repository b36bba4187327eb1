// Package queue defines message payloads exchanged over the message broker.
package queue

// MedicationDueEvent is published whenever the reminder scan finds a
// medication past its due time. It carries enough information for
// downstream consumers to log or deliver a notification without querying
// the primary database.
type MedicationDueEvent struct {
	EventID      string `json:"event_id"`
	MedicationID uint64 `json:"medication_id"`
	UserID       uint64 `json:"user_id"`
	Name         string `json:"name"`
	DosageForm   string `json:"dosage_form"`
	Attributes   string `json:"attributes"`
	DueAt        string `json:"due_at"`
}
