package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComposeAttributes(t *testing.T) {
	assert.Equal(t, "Standard", ComposeAttributes(AttributeFlags{}))
	assert.Equal(t, "Food Sensitive (Take with food)",
		ComposeAttributes(AttributeFlags{FoodSensitive: true}))
}

func TestNewMedication_DerivesLabelAndClampsDosages(t *testing.T) {
	due := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	m := NewMedication(7, "Antibiotic", "Capsule", AttributeFlags{FoodSensitive: true}, 0, due)
	assert.Equal(t, uint64(7), m.UserID)
	assert.Contains(t, m.Attributes, "Food Sensitive")
	assert.Equal(t, 1, m.DosagesPerDay, "dosage counts below 1 clamp to 1")
	assert.Equal(t, due, m.NextDueAt)

	m = NewMedication(7, "Aspirin", "Tablet", AttributeFlags{}, 2, due)
	assert.Equal(t, "Standard", m.Attributes)
	assert.Equal(t, 2, m.DosagesPerDay)
}
