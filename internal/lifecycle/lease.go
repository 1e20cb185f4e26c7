package lifecycle

import (
	"time"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

// Sign records a party's signature in the lease config. Each party may sign
// once; re-signing and signing a cancelled lease are rejected.
func Sign(l *models.Lease, cfg *lease.Config, actor Actor, now time.Time) error {
	if l.Status == models.LeaseStatusCancelled || l.Status == models.LeaseStatusCancellationPending {
		return &TransitionError{Entity: "lease", Current: string(l.Status), Event: "sign"}
	}

	ts := now.UTC().Format(time.RFC3339)

	switch actor {
	case ActorLandlord:
		if cfg.LandlordSigned {
			return &TransitionError{Entity: "lease", Current: "landlord_signed", Event: "sign"}
		}
		cfg.LandlordSigned = true
		cfg.LandlordSignedAt = ts
	case ActorTenant:
		if cfg.TenantSigned {
			return &TransitionError{Entity: "lease", Current: "tenant_signed", Event: "sign"}
		}
		cfg.TenantSigned = true
		cfg.TenantSignedAt = ts
	default:
		return &TransitionError{Entity: "lease", Current: string(l.Status), Event: "sign"}
	}

	// Both signatures flip the lease to signed; activation still waits for
	// the move-in payment.
	if cfg.BothSigned() {
		l.IsSigned = true
		signedAt := now
		l.SignedAt = &signedAt
		l.Status = models.LeaseStatusSigned
	}

	return nil
}

// CanActivate gates activation: both signatures plus a confirmed move-in
// payment. The payment webhook is the only caller that activates.
func CanActivate(l *models.Lease, cfg *lease.Config, hasConfirmedMoveIn bool) Gate {
	if l.IsActive {
		return blocked("Lease is already active.")
	}
	if l.Status == models.LeaseStatusCancelled || l.Status == models.LeaseStatusCancellationPending {
		return blocked("Lease has been cancelled.")
	}
	if cfg == nil || !cfg.BothSigned() || !l.IsSigned {
		return blocked("Both parties must sign the lease before it can be activated.")
	}
	if !hasConfirmedMoveIn {
		return blocked("The move-in payment must be confirmed before the lease becomes active.")
	}
	return allowed()
}

// Activate marks a lease active. Callers must have passed CanActivate.
func Activate(l *models.Lease) {
	l.IsActive = true
	l.Status = models.LeaseStatusActive
}

// Cancellation is the outcome of a cancellation request
type Cancellation struct {
	NoticeDate    time.Time
	EffectiveDate time.Time
	// PenaltyDue is true when the notice leaves fewer than the notice
	// period before the next rent date, making the cancel penalty payable
	// by the tenant.
	PenaltyDue bool
}

// RequestCancellation applies a cancellation request from either party to
// an active lease: the lease is deactivated immediately, the end date moves
// to notice + NoticeDays, and the config records who cancelled when.
func RequestCancellation(l *models.Lease, cfg *lease.Config, actor Actor, now time.Time) (*Cancellation, error) {
	if !l.IsActive || l.Status == models.LeaseStatusCancellationPending || l.Status == models.LeaseStatusCancelled {
		return nil, &TransitionError{Entity: "lease", Current: string(l.Status), Event: "request_cancellation"}
	}

	effective := now.AddDate(0, 0, lease.NoticeDays)

	l.IsActive = false
	l.Status = models.LeaseStatusCancellationPending
	l.EndDate = effective.Format("2006-01-02")

	if cfg != nil {
		cfg.CancellationNoticeDate = now.UTC().Format(time.RFC3339)
		cfg.CancellationEffectiveDate = effective.UTC().Format(time.RFC3339)
		cfg.CancelledBy = string(actor)
	}

	rentDueDay := 1
	if cfg != nil && cfg.RentDueDay > 0 {
		rentDueDay = cfg.RentDueDay
	}

	return &Cancellation{
		NoticeDate:    now,
		EffectiveDate: effective,
		PenaltyDue:    penaltyDue(now, rentDueDay),
	}, nil
}

// penaltyDue reports whether fewer than NoticeDays remain between the
// notice and the next rent due date.
func penaltyDue(now time.Time, rentDueDay int) bool {
	next := time.Date(now.Year(), now.Month(), rentDueDay, 0, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next.Sub(now) < time.Duration(lease.NoticeDays)*24*time.Hour
}

// FinalizeCancellation closes out a cancellation-pending lease whose
// effective date has passed.
func FinalizeCancellation(l *models.Lease) error {
	if l.Status != models.LeaseStatusCancellationPending {
		return &TransitionError{Entity: "lease", Current: string(l.Status), Event: "finalize_cancellation"}
	}
	l.Status = models.LeaseStatusCancelled
	return nil
}
