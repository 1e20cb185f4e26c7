package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"township-rental-portal/internal/models"
)

func TestBuildFilterEmpty(t *testing.T) {
	assert.Equal(t, "", BuildFilter(FilterParams{Query: "soweto"}))
}

func TestBuildFilterSingle(t *testing.T) {
	assert.Equal(t, "township = 'Soweto'", BuildFilter(FilterParams{Township: "Soweto"}))

	minRent := 1500.0
	assert.Equal(t, "rent_amount >= 1500", BuildFilter(FilterParams{MinRent: &minRent}))

	assert.Equal(t, "status = 'available'", BuildFilter(FilterParams{Status: "available"}))
}

func TestBuildFilterCombined(t *testing.T) {
	minRent, maxRent := 1500.0, 3500.0
	minBedrooms := 2

	got := BuildFilter(FilterParams{
		Township:      "Khayelitsha",
		PropertyTypes: []string{"room", "backroom"},
		MinRent:       &minRent,
		MaxRent:       &maxRent,
		MinBedrooms:   &minBedrooms,
		Status:        "available",
	})

	want := "township = 'Khayelitsha' AND (property_type = 'room' OR property_type = 'backroom') AND rent_amount >= 1500 AND rent_amount <= 3500 AND bedrooms >= 2 AND status = 'available'"
	assert.Equal(t, want, got)
}

func TestBuildFilterEscapesQuotes(t *testing.T) {
	got := BuildFilter(FilterParams{Township: "K'waMashu"})
	assert.Equal(t, `township = 'K\'waMashu'`, got)
}

func TestNewPropertyDoc(t *testing.T) {
	bedrooms := 2
	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	doc := NewPropertyDoc(&models.Property{
		ID:           "property-1",
		LandlordID:   "landlord-1",
		Title:        "Backroom in Soweto",
		PropertyType: models.PropertyTypeBackroom,
		Bedrooms:     &bedrooms,
		RentAmount:   2500,
		Status:       models.PropertyStatusAvailable,
		CreatedAt:    created,
	}, "Soweto")

	assert.Equal(t, "property-1", doc.ID)
	assert.Equal(t, "Soweto", doc.Township)
	assert.Equal(t, 2, doc.Bedrooms)
	assert.Equal(t, 2500.0, doc.RentAmount)
	assert.Equal(t, "available", doc.Status)
	assert.Equal(t, created.Unix(), doc.CreatedAt)

	// Nil bedrooms indexes as zero.
	doc = NewPropertyDoc(&models.Property{ID: "property-2"}, "")
	assert.Equal(t, 0, doc.Bedrooms)
}
