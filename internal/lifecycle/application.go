package lifecycle

import "township-rental-portal/internal/models"

// CanApply gates application creation on the tenant's viewing for the
// property. Submission requires a viewing the landlord has confirmed or
// marked completed; application_submitted also passes, since that state is
// only ever reached from a confirmed viewing (re-submission is then caught
// by the unique (tenant, property) constraint, not by this gate).
func CanApply(viewing *models.ViewingRequest) Gate {
	if viewing == nil {
		return blocked("You need to request a viewing before applying for this property.")
	}

	switch viewing.Status {
	case models.ViewingStatusConfirmed, models.ViewingStatusCompleted, models.ViewingStatusApplicationSubmitted:
		return allowed()
	case models.ViewingStatusPending:
		return blocked("Your viewing request is still pending confirmation. You can apply once the landlord confirms your viewing.")
	}
	return blocked("Your viewing request was not confirmed. Request a new viewing before applying.")
}

// ApplicationEvent is an action applied to an application
type ApplicationEvent string

const (
	ApplicationApprove ApplicationEvent = "approve"
	ApplicationReject  ApplicationEvent = "reject"
)

// NextApplicationStatus returns the state an application moves to. Only the
// landlord decides, and only while the application is pending; approved and
// rejected are terminal.
func NextApplicationStatus(current models.ApplicationStatus, event ApplicationEvent, actor Actor) (models.ApplicationStatus, error) {
	if actor != ActorLandlord || current != models.ApplicationStatusPending {
		return current, &TransitionError{Entity: "application", Current: string(current), Event: string(event)}
	}

	switch event {
	case ApplicationApprove:
		return models.ApplicationStatusApproved, nil
	case ApplicationReject:
		return models.ApplicationStatusRejected, nil
	}

	return current, &TransitionError{Entity: "application", Current: string(current), Event: string(event)}
}
