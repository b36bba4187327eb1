package model

import "time"

// AttributeFlags carries the creation-time flags that influence the
// derived attribute label of a medication.
type AttributeFlags struct {
	FoodSensitive bool
}

// labelRule contributes one attribute fragment when its condition holds.
// Rules are evaluated in declaration order so the composed label is
// deterministic.
type labelRule struct {
	applies func(AttributeFlags) bool
	label   string
}

const standardLabel = "Standard"

var labelRules = []labelRule{
	{
		applies: func(f AttributeFlags) bool { return f.FoodSensitive },
		label:   "Food Sensitive (Take with food)",
	},
	// Further attribute rules (time sensitive, controlled substance, ...)
	// slot in here.
}

// ComposeAttributes builds the attribute label for a medication from its
// flags. The base label is "Standard"; the first matching rule replaces
// it and later matches are appended comma separated.
func ComposeAttributes(flags AttributeFlags) string {
	label := standardLabel
	for _, r := range labelRules {
		if !r.applies(flags) {
			continue
		}
		if label == standardLabel {
			label = r.label
		} else {
			label = label + ", " + r.label
		}
	}
	return label
}

// NewMedication assembles an unsaved medication record with its derived
// attribute label. DosagesPerDay below 1 is clamped to 1. The caller
// supplies the initial due time.
func NewMedication(userID uint64, name, dosageForm string, flags AttributeFlags, dosagesPerDay int, dueAt time.Time) Medication {
	if dosagesPerDay < 1 {
		dosagesPerDay = 1
	}
	return Medication{
		UserID:        userID,
		Name:          name,
		DosageForm:    dosageForm,
		Attributes:    ComposeAttributes(flags),
		DosagesPerDay: dosagesPerDay,
		NextDueAt:     dueAt,
	}
}
