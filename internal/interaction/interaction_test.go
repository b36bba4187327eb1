package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medication-reminder/internal/model"
)

func medNamed(name string) model.Medication {
	return model.Medication{Name: name, DosageForm: "Tablet", Attributes: "Standard", DosagesPerDay: 1}
}

func TestCheck_AspirinWarfarinIsCritical(t *testing.T) {
	warning := Check(medNamed("Aspirin"), []model.Medication{medNamed("Warfarin")})
	require.NotEmpty(t, warning)
	assert.Contains(t, warning, "CRITICAL INTERACTION")
	assert.Contains(t, warning, "Aspirin")
	assert.Contains(t, warning, "Warfarin")
}

func TestCheck_IsSymmetric(t *testing.T) {
	ab := Check(medNamed("Aspirin"), []model.Medication{medNamed("Warfarin")})
	ba := Check(medNamed("Warfarin"), []model.Medication{medNamed("Aspirin")})
	assert.Equal(t, ab != "", ba != "", "pair rule must flag in both directions")
}

func TestCheck_SubstringAndCaseInsensitive(t *testing.T) {
	// Containment, not exact match: brand-style names still flag.
	warning := Check(medNamed("baby aspirin 81mg"), []model.Medication{medNamed("WARFARIN sodium")})
	assert.Contains(t, warning, "CRITICAL INTERACTION")
}

func TestCheck_CiproAgainstFoodSensitive(t *testing.T) {
	existing := medNamed("Antibiotic Supplement")
	existing.Attributes = "Food Sensitive (Take with food)"

	warning := Check(medNamed("Ciprofloxacin"), []model.Medication{existing})
	require.NotEmpty(t, warning)
	assert.Contains(t, warning, "INTERACTION")
	assert.Contains(t, warning, "Ciprofloxacin")
	assert.NotContains(t, warning, "CRITICAL")
}

func TestCheck_CiproIgnoresStandardMedications(t *testing.T) {
	warning := Check(medNamed("Cipro"), []model.Medication{medNamed("Vitamin C")})
	assert.Empty(t, warning)
}

func TestCheck_FirstMatchWins(t *testing.T) {
	foodSensitive := medNamed("Iron Supplement")
	foodSensitive.Attributes = "Food Sensitive (Take with food)"

	// Candidate matches both rules; the warfarin pair appears first in the
	// existing list and must be the one reported.
	warning := Check(medNamed("cipro-aspirin compound"),
		[]model.Medication{medNamed("Warfarin"), foodSensitive})
	assert.Contains(t, warning, "CRITICAL INTERACTION")
}

func TestCheck_NoExistingMedications(t *testing.T) {
	assert.Empty(t, Check(medNamed("Aspirin"), nil))
}
