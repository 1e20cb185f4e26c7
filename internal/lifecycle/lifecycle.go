// Package lifecycle centralizes every status transition for viewing
// requests, applications and leases. Handlers never compare status strings
// themselves; they ask this package whether a transition or a cross-entity
// precondition holds and act on the answer.
package lifecycle

import "fmt"

// TransitionError reports a rejected state change
type TransitionError struct {
	Entity  string
	Current string
	Event   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot apply %s in state %s", e.Entity, e.Event, e.Current)
}

// Gate is the outcome of a cross-entity precondition check
type Gate struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allowed() Gate {
	return Gate{Allowed: true}
}

// blocked builds a rejected gate with a user-facing reason
func blocked(reason string) Gate {
	return Gate{Allowed: false, Reason: reason}
}
