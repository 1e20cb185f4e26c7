package document

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

func renderTestAgreement(t *testing.T, cfg *lease.Config) *goquery.Document {
	t.Helper()

	html, err := RenderLeaseAgreement(AgreementData{
		Lease: &models.Lease{
			ID:            "lease-1",
			StartDate:     "2026-09-01",
			EndDate:       "2027-08-31",
			MonthlyRent:   3000,
			DepositAmount: 3000,
		},
		Config:   cfg,
		Landlord: &models.Profile{FirstName: "Nomsa", LastName: "Dlamini"},
		Tenant:   &models.Profile{FirstName: "Thabo", LastName: "Mokoena"},
		Property: &models.Property{Title: "Backroom in Soweto", Address: "12 Vilakazi St"},
		Now:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLeaseAgreementContents(t *testing.T) {
	cfg := &lease.Config{
		Version:          lease.CurrentVersion,
		Extras:           []lease.Extra{{ID: "e1", Name: "Water", Amount: 200}},
		DepositRequired:  true,
		MonthlyTotal:     3200,
		MoveInTotal:      6200,
		LandlordSigned:   true,
		LandlordSignedAt: "2026-08-20T10:00:00Z",
	}

	doc := renderTestAgreement(t, cfg)

	assert.Contains(t, doc.Find("h1").Text(), "RESIDENTIAL LEASE AGREEMENT")
	assert.Contains(t, doc.Find("#property").Text(), "Backroom in Soweto")
	assert.Contains(t, doc.Find("#landlord").Text(), "Nomsa Dlamini")
	assert.Contains(t, doc.Find("#tenant").Text(), "Thabo Mokoena")
	assert.Contains(t, doc.Find("#term").Text(), "01/09/2026")
	assert.Contains(t, doc.Find("#term").Text(), "31/08/2027")

	monthly := doc.Find("#monthly").Text()
	assert.Contains(t, monthly, "Water")
	assert.Contains(t, monthly, "R 3 200,00")

	movein := doc.Find("#movein").Text()
	assert.Contains(t, movein, "Deposit")
	assert.Contains(t, movein, "R 6 200,00")

	cancellation := doc.Find("#cancellation").Text()
	assert.Contains(t, cancellation, "20")
	assert.Contains(t, cancellation, "R 300,00")

	signatures := doc.Find("#signatures").Text()
	assert.Contains(t, signatures, "Signed 20/08/2026")
	assert.Contains(t, signatures, "Not signed")
}

func TestLeaseAgreementNilConfig(t *testing.T) {
	doc := renderTestAgreement(t, nil)

	// Totals fall back to the lease row.
	assert.Contains(t, doc.Find("#monthly").Text(), "R 3 000,00")
	assert.Contains(t, doc.Find("#movein").Text(), "R 6 000,00")
	assert.Contains(t, doc.Find("#signatures").Text(), "Not signed")
}
