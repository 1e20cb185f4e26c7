package lease

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/models"
)

func TestParseConfigEmpty(t *testing.T) {
	assert.Nil(t, ParseConfig(""))
	assert.Nil(t, ParseConfig("   "))
}

func TestParseConfigMalformed(t *testing.T) {
	assert.Nil(t, ParseConfig("not json"))
	assert.Nil(t, ParseConfig("{truncated"))
	assert.Nil(t, ParseConfig(`["wrong","shape"`))
}

func TestParseConfigRoundTrip(t *testing.T) {
	cfg := &Config{
		Version:        CurrentVersion,
		DurationMonths: 12,
		RentDueDay:     1,
		Extras: []Extra{
			{ID: "e1", Name: "Water", Amount: 200},
			{ID: "e2", Name: "Electricity", Amount: 350},
		},
		DepositRequired:  true,
		MonthlyTotal:     3550,
		MoveInTotal:      6550,
		LandlordSigned:   true,
		LandlordSignedAt: "2026-02-01T10:00:00Z",
	}

	parsed := ParseConfig(cfg.Serialize())
	require.NotNil(t, parsed)
	assert.Equal(t, cfg, parsed)
}

func TestMigrateNil(t *testing.T) {
	assert.Nil(t, Migrate(nil, &models.Lease{}))
}

func TestMigrateLegacyBlob(t *testing.T) {
	// A v0 blob: signatures present, no version, no computed totals.
	l := &models.Lease{MonthlyRent: 3000, DepositAmount: 3000}
	cfg := ParseConfig(`{"extras":[{"id":"e1","name":"Water","amount":200}],"deposit_required":true,"tenant_signed":true}`)
	require.NotNil(t, cfg)

	out := Migrate(cfg, l)
	assert.Equal(t, CurrentVersion, out.Version)
	assert.Equal(t, 3200.0, out.MonthlyTotal)
	assert.Equal(t, 6200.0, out.MoveInTotal)
	assert.Equal(t, 1, out.RentDueDay)
	assert.True(t, out.TenantSigned)
}

func TestMigrateNoDeposit(t *testing.T) {
	l := &models.Lease{MonthlyRent: 2500, DepositAmount: 2500}
	cfg := ParseConfig(`{"deposit_required":false}`)
	require.NotNil(t, cfg)

	out := Migrate(cfg, l)
	assert.Equal(t, 2500.0, out.MonthlyTotal)
	assert.Equal(t, 2500.0, out.MoveInTotal)
}

func TestMigrateCurrentVersionUntouched(t *testing.T) {
	l := &models.Lease{MonthlyRent: 3000, DepositAmount: 3000}
	cfg := &Config{Version: CurrentVersion, MonthlyTotal: 999, MoveInTotal: 999}

	out := Migrate(cfg, l)
	assert.Equal(t, 999.0, out.MonthlyTotal)
	assert.Equal(t, 999.0, out.MoveInTotal)
}

func TestBothSigned(t *testing.T) {
	cfg := &Config{LandlordSigned: true}
	assert.False(t, cfg.BothSigned())

	cfg.TenantSigned = true
	assert.True(t, cfg.BothSigned())
}
