package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/models"
)

func TestCanApplyNoViewing(t *testing.T) {
	gate := CanApply(nil)
	assert.False(t, gate.Allowed)
	assert.Contains(t, gate.Reason, "request a viewing")
}

func TestCanApplyPendingViewing(t *testing.T) {
	gate := CanApply(&models.ViewingRequest{Status: models.ViewingStatusPending})
	assert.False(t, gate.Allowed)
	assert.Contains(t, gate.Reason, "pending confirmation")
}

func TestCanApplyConfirmedOrCompleted(t *testing.T) {
	for _, status := range []models.ViewingStatus{
		models.ViewingStatusConfirmed,
		models.ViewingStatusCompleted,
		models.ViewingStatusApplicationSubmitted,
	} {
		gate := CanApply(&models.ViewingRequest{Status: status})
		assert.True(t, gate.Allowed, "status=%s", status)
	}
}

func TestCanApplyDeclinedOrCancelled(t *testing.T) {
	for _, status := range []models.ViewingStatus{models.ViewingStatusDeclined, models.ViewingStatusCancelled} {
		gate := CanApply(&models.ViewingRequest{Status: status})
		assert.False(t, gate.Allowed, "status=%s", status)
	}
}

func TestApplicationApprove(t *testing.T) {
	next, err := NextApplicationStatus(models.ApplicationStatusPending, ApplicationApprove, ActorLandlord)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, next)
}

func TestApplicationReject(t *testing.T) {
	next, err := NextApplicationStatus(models.ApplicationStatusPending, ApplicationReject, ActorLandlord)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, next)
}

func TestApplicationTenantCannotDecide(t *testing.T) {
	_, err := NextApplicationStatus(models.ApplicationStatusPending, ApplicationApprove, ActorTenant)
	assert.Error(t, err)
}

func TestApplicationTerminal(t *testing.T) {
	for _, status := range []models.ApplicationStatus{models.ApplicationStatusApproved, models.ApplicationStatusRejected} {
		_, err := NextApplicationStatus(status, ApplicationApprove, ActorLandlord)
		assert.Error(t, err)
		_, err = NextApplicationStatus(status, ApplicationReject, ActorLandlord)
		assert.Error(t, err)
	}
}
