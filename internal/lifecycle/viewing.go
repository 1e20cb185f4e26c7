package lifecycle

import "township-rental-portal/internal/models"

// ViewingEvent is an action applied to a viewing request
type ViewingEvent string

const (
	ViewingConfirm ViewingEvent = "confirm"
	ViewingDecline ViewingEvent = "decline"
	ViewingComplete ViewingEvent = "complete"
	ViewingCancel  ViewingEvent = "cancel"
	// ViewingAttachApplication marks a confirmed/completed viewing as
	// consumed by an application submission.
	ViewingAttachApplication ViewingEvent = "attach_application"
)

// Actor identifies which party is driving a transition
type Actor string

const (
	ActorTenant   Actor = "tenant"
	ActorLandlord Actor = "landlord"
)

// NextViewingStatus returns the state a viewing request moves to when actor
// applies event, or a TransitionError when the move is not permitted.
// Confirm/decline/complete are landlord-only; cancel is open to either
// party while the request is not terminal.
func NextViewingStatus(current models.ViewingStatus, event ViewingEvent, actor Actor) (models.ViewingStatus, error) {
	reject := func() (models.ViewingStatus, error) {
		return current, &TransitionError{Entity: "viewing_request", Current: string(current), Event: string(event)}
	}

	switch event {
	case ViewingConfirm:
		if actor != ActorLandlord || current != models.ViewingStatusPending {
			return reject()
		}
		return models.ViewingStatusConfirmed, nil

	case ViewingDecline:
		if actor != ActorLandlord || current != models.ViewingStatusPending {
			return reject()
		}
		return models.ViewingStatusDeclined, nil

	case ViewingComplete:
		if actor != ActorLandlord || current != models.ViewingStatusConfirmed {
			return reject()
		}
		return models.ViewingStatusCompleted, nil

	case ViewingCancel:
		switch current {
		case models.ViewingStatusPending, models.ViewingStatusConfirmed:
			return models.ViewingStatusCancelled, nil
		}
		return reject()

	case ViewingAttachApplication:
		switch current {
		case models.ViewingStatusConfirmed, models.ViewingStatusCompleted:
			return models.ViewingStatusApplicationSubmitted, nil
		}
		return reject()
	}

	return reject()
}
