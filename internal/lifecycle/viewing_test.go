package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/models"
)

func TestViewingLandlordConfirm(t *testing.T) {
	next, err := NextViewingStatus(models.ViewingStatusPending, ViewingConfirm, ActorLandlord)
	require.NoError(t, err)
	assert.Equal(t, models.ViewingStatusConfirmed, next)
}

func TestViewingTenantCannotConfirm(t *testing.T) {
	_, err := NextViewingStatus(models.ViewingStatusPending, ViewingConfirm, ActorTenant)
	assert.Error(t, err)
}

func TestViewingDecline(t *testing.T) {
	next, err := NextViewingStatus(models.ViewingStatusPending, ViewingDecline, ActorLandlord)
	require.NoError(t, err)
	assert.Equal(t, models.ViewingStatusDeclined, next)
}

func TestViewingCompleteRequiresConfirmed(t *testing.T) {
	next, err := NextViewingStatus(models.ViewingStatusConfirmed, ViewingComplete, ActorLandlord)
	require.NoError(t, err)
	assert.Equal(t, models.ViewingStatusCompleted, next)

	_, err = NextViewingStatus(models.ViewingStatusPending, ViewingComplete, ActorLandlord)
	assert.Error(t, err)
}

func TestViewingCancelEitherParty(t *testing.T) {
	for _, actor := range []Actor{ActorTenant, ActorLandlord} {
		next, err := NextViewingStatus(models.ViewingStatusPending, ViewingCancel, actor)
		require.NoError(t, err)
		assert.Equal(t, models.ViewingStatusCancelled, next)

		next, err = NextViewingStatus(models.ViewingStatusConfirmed, ViewingCancel, actor)
		require.NoError(t, err)
		assert.Equal(t, models.ViewingStatusCancelled, next)
	}
}

func TestViewingTerminalStatesRejectEverything(t *testing.T) {
	terminals := []models.ViewingStatus{
		models.ViewingStatusCompleted,
		models.ViewingStatusDeclined,
		models.ViewingStatusCancelled,
	}
	events := []ViewingEvent{ViewingConfirm, ViewingDecline, ViewingComplete, ViewingCancel}

	for _, status := range terminals {
		for _, event := range events {
			_, err := NextViewingStatus(status, event, ActorLandlord)
			assert.Error(t, err, "status=%s event=%s", status, event)
		}
	}
}

func TestViewingAttachApplication(t *testing.T) {
	for _, status := range []models.ViewingStatus{models.ViewingStatusConfirmed, models.ViewingStatusCompleted} {
		next, err := NextViewingStatus(status, ViewingAttachApplication, ActorTenant)
		require.NoError(t, err)
		assert.Equal(t, models.ViewingStatusApplicationSubmitted, next)
	}

	_, err := NextViewingStatus(models.ViewingStatusPending, ViewingAttachApplication, ActorTenant)
	assert.Error(t, err)
}
