// Package interaction implements the rule-based drug interaction check
// that runs when a user adds a new medication. The check is a pure
// function over the candidate and the user's existing medications; it
// performs no I/O and never mutates its inputs.
package interaction

import (
	"fmt"
	"strings"

	"github.com/medtrack/medication-reminder/internal/model"
)

// foodSensitiveMarker is the label fragment that identifies a food
// sensitive medication (see model.ComposeAttributes).
const foodSensitiveMarker = "Food Sensitive"

// Check compares a candidate medication against the user's existing
// medications and returns a warning message for the first rule that
// matches, or "" when no interaction is found.
//
// Matching is case-insensitive substring containment rather than exact
// token match, accepting false positives over false negatives. The
// aspirin/warfarin rule is symmetric: either drug flags the other.
func Check(candidate model.Medication, existing []model.Medication) string {
	newName := strings.ToLower(candidate.Name)

	for _, ex := range existing {
		existingName := strings.ToLower(ex.Name)

		if (strings.Contains(newName, "aspirin") && strings.Contains(existingName, "warfarin")) ||
			(strings.Contains(newName, "warfarin") && strings.Contains(existingName, "aspirin")) {
			return fmt.Sprintf("CRITICAL INTERACTION: %s and %s may cause bleeding risks.",
				candidate.Name, ex.Name)
		}

		if strings.Contains(newName, "cipro") && strings.Contains(ex.Attributes, foodSensitiveMarker) {
			return fmt.Sprintf("INTERACTION: %s might interact with food/supplements associated with %s",
				candidate.Name, ex.Name)
		}
	}
	return ""
}
