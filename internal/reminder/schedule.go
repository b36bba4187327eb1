package reminder

import "time"

const (
	hoursPerDay     = 24
	snoozeDelay     = 15 * time.Minute
	initialDueDelay = 10 * time.Second
	// backgroundAdvance is the fixed reschedule applied by the scanner
	// after notifying. Deliberately not dosage-derived: only an explicit
	// take uses the dosage interval.
	backgroundAdvance = 24 * time.Hour
)

// NextAfterTake returns the due time following a take action:
// now + floor(24/dosagesPerDay) hours. Dosage counts below 1 are clamped
// to 1 before the division.
func NextAfterTake(now time.Time, dosagesPerDay int) time.Time {
	if dosagesPerDay < 1 {
		dosagesPerDay = 1
	}
	return now.Add(time.Duration(hoursPerDay/dosagesPerDay) * time.Hour)
}

// NextAfterSnooze returns the due time following a snooze action:
// now + 15 minutes, regardless of the dosage configuration.
func NextAfterSnooze(now time.Time) time.Time {
	return now.Add(snoozeDelay)
}

// InitialDue returns the due time assigned to a freshly added medication
// when no explicit start time is given. The short offset makes the first
// reminder fire almost immediately.
func InitialDue(now time.Time) time.Time {
	return now.Add(initialDueDelay)
}
