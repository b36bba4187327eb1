// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the reminder scanner to distinguish between different
// failure scenarios. For example, ErrMedicationNotFound maps to an HTTP
// 404 on direct user actions, while ErrVersionConflict signals that a
// due-time write lost an optimistic concurrency race and should either
// be retried (user actions) or dropped (background advance).
package repository

import "errors"

// ErrMedicationNotFound is returned when the referenced medication id
// does not exist. Handlers should translate this into an HTTP 404.
var ErrMedicationNotFound = errors.New("medication not found")

// ErrVersionConflict is returned when a compare-and-swap update on a
// medication's due time touches a row whose version has moved on since
// it was read. The record still exists; someone else rescheduled first.
var ErrVersionConflict = errors.New("medication version conflict")
