package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

func newPendingLease() (*models.Lease, *lease.Config) {
	l := &models.Lease{
		ID:            "lease-1",
		Status:        models.LeaseStatusPending,
		MonthlyRent:   3000,
		DepositAmount: 3000,
		StartDate:     "2026-09-01",
		EndDate:       "2027-08-31",
	}
	cfg := &lease.Config{
		Version:         lease.CurrentVersion,
		DurationMonths:  12,
		RentDueDay:      1,
		DepositRequired: true,
		MonthlyTotal:    3000,
		MoveInTotal:     6000,
	}
	return l, cfg
}

func TestSignLandlordThenTenant(t *testing.T) {
	l, cfg := newPendingLease()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Sign(l, cfg, ActorLandlord, now))
	assert.True(t, cfg.LandlordSigned)
	assert.False(t, l.IsSigned)

	require.NoError(t, Sign(l, cfg, ActorTenant, now))
	assert.True(t, cfg.TenantSigned)
	assert.True(t, l.IsSigned)
	assert.Equal(t, models.LeaseStatusSigned, l.Status)
	require.NotNil(t, l.SignedAt)

	// Signing never activates on its own.
	assert.False(t, l.IsActive)
}

func TestSignTwiceRejected(t *testing.T) {
	l, cfg := newPendingLease()
	now := time.Now()

	require.NoError(t, Sign(l, cfg, ActorTenant, now))
	assert.Error(t, Sign(l, cfg, ActorTenant, now))
}

func TestSignCancelledLeaseRejected(t *testing.T) {
	l, cfg := newPendingLease()
	l.Status = models.LeaseStatusCancelled

	assert.Error(t, Sign(l, cfg, ActorLandlord, time.Now()))
}

func TestCanActivateRequiresSignaturesAndPayment(t *testing.T) {
	l, cfg := newPendingLease()
	now := time.Now()

	gate := CanActivate(l, cfg, false)
	assert.False(t, gate.Allowed)

	require.NoError(t, Sign(l, cfg, ActorLandlord, now))
	require.NoError(t, Sign(l, cfg, ActorTenant, now))

	gate = CanActivate(l, cfg, false)
	assert.False(t, gate.Allowed)
	assert.Contains(t, gate.Reason, "move-in payment")

	gate = CanActivate(l, cfg, true)
	assert.True(t, gate.Allowed)

	Activate(l)
	assert.True(t, l.IsActive)
	assert.Equal(t, models.LeaseStatusActive, l.Status)

	gate = CanActivate(l, cfg, true)
	assert.False(t, gate.Allowed)
}

func TestCanActivateNilConfig(t *testing.T) {
	l, _ := newPendingLease()
	l.IsSigned = true

	gate := CanActivate(l, nil, true)
	assert.False(t, gate.Allowed)
}

func TestRequestCancellation(t *testing.T) {
	l, cfg := newPendingLease()
	l.IsActive = true
	l.Status = models.LeaseStatusActive
	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	c, err := RequestCancellation(l, cfg, ActorTenant, now)
	require.NoError(t, err)

	assert.False(t, l.IsActive)
	assert.Equal(t, models.LeaseStatusCancellationPending, l.Status)
	assert.Equal(t, "2026-09-30", l.EndDate)
	assert.Equal(t, "tenant", cfg.CancelledBy)
	assert.NotEmpty(t, cfg.CancellationNoticeDate)
	assert.Equal(t, now.AddDate(0, 0, lease.NoticeDays), c.EffectiveDate)
}

func TestRequestCancellationInactiveRejected(t *testing.T) {
	l, cfg := newPendingLease()

	_, err := RequestCancellation(l, cfg, ActorLandlord, time.Now())
	assert.Error(t, err)
}

func TestCancellationPenalty(t *testing.T) {
	l, cfg := newPendingLease()
	l.IsActive = true
	l.Status = models.LeaseStatusActive

	// Notice on the 20th with rent due on the 1st: 11 days remain, under
	// the 20-day notice period, so the penalty applies.
	now := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)
	c, err := RequestCancellation(l, cfg, ActorTenant, now)
	require.NoError(t, err)
	assert.True(t, c.PenaltyDue)

	// Notice on the 2nd leaves 29 days before the next due date.
	l2, cfg2 := newPendingLease()
	l2.IsActive = true
	l2.Status = models.LeaseStatusActive
	c, err = RequestCancellation(l2, cfg2, ActorTenant, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, c.PenaltyDue)
}

func TestFinalizeCancellation(t *testing.T) {
	l, cfg := newPendingLease()
	l.IsActive = true
	l.Status = models.LeaseStatusActive

	_, err := RequestCancellation(l, cfg, ActorLandlord, time.Now())
	require.NoError(t, err)

	require.NoError(t, FinalizeCancellation(l))
	assert.Equal(t, models.LeaseStatusCancelled, l.Status)

	assert.Error(t, FinalizeCancellation(l))
}
