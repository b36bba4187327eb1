package model

import "time"

// Medication represents a tracked medication as stored in the
// `medications` table. Each field corresponds to a column in the
// database. The attributes label is derived once at creation time
// (see attributes.go) and persisted alongside the record so that the
// reminder pipeline and interaction checks can read it without
// recomputing.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the medication.
//  Name          – medication name as entered by the user.
//  DosageForm    – form of the dose (Tablet, Capsule, Syrup, ...).
//  Attributes    – derived attribute label, e.g. "Standard" or
//                  "Food Sensitive (Take with food)".
//  DosagesPerDay – configured doses per day; always >= 1.
//  NextDueAt     – UTC timestamp at which the next dose is due.
//  Version       – optimistic concurrency counter; bumped on every
//                  due-time change so a background advance and a user
//                  take/snooze cannot silently overwrite each other.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Medication struct {
	ID            uint64    // medications.id
	UserID        uint64    // medications.user_id
	Name          string    // medications.name
	DosageForm    string    // medications.dosage_form
	Attributes    string    // medications.attributes
	DosagesPerDay int       // medications.dosages_per_day
	NextDueAt     time.Time // medications.next_due_at
	Version       uint64    // medications.version
	CreatedAt     time.Time // medications.created_at
	UpdatedAt     time.Time // medications.updated_at
}
