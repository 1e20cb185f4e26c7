package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

// ErrNotAllowed is returned when a user requests a payment type they are
// not the payer for. Handlers map it to 403.
var ErrNotAllowed = errors.New("user is not the payer for this payment type")

// ErrUnknownType is returned for a payment type the resolver does not know
var ErrUnknownType = errors.New("unknown payment type")

// ErrNoDeposit is returned when a deposit return is requested on a lease
// whose config never required a deposit.
var ErrNoDeposit = errors.New("lease has no deposit to return")

// Breakdown itemizes a resolved amount for display to the payer
type Breakdown struct {
	Deposit  float64       `json:"deposit,omitempty"`
	BaseRent float64       `json:"base_rent,omitempty"`
	Extras   []lease.Extra `json:"extras,omitempty"`
	Fee      float64       `json:"fee,omitempty"`
	Total    float64       `json:"total"`
}

// Quote is the outcome of resolving a payment type against a lease. The
// amount is fixed here and copied onto the Payment row at creation; it is
// never recomputed after that.
type Quote struct {
	PaymentType models.PaymentType `json:"payment_type"`
	Amount      float64            `json:"amount"`
	Breakdown   Breakdown          `json:"breakdown"`
	// PayerID is the only user allowed to initiate this payment.
	PayerID string `json:"-"`
}

// Resolve computes the amount due for paymentType on a lease and checks
// that userID is the authorized payer. cfg may be nil for leases created
// before the structured config existed; the resolver then falls back to
// the lease row's own columns.
func Resolve(l *models.Lease, cfg *lease.Config, paymentType models.PaymentType, userID string) (*Quote, error) {
	q := &Quote{PaymentType: paymentType}

	switch paymentType {
	case models.PaymentTypeMoveIn:
		q.PayerID = l.TenantID
		if cfg != nil {
			q.Amount = cfg.MoveInTotal
			q.Breakdown = Breakdown{
				BaseRent: l.MonthlyRent,
				Extras:   cfg.Extras,
				Total:    cfg.MoveInTotal,
			}
			if cfg.DepositRequired {
				q.Breakdown.Deposit = l.DepositAmount
			}
		} else {
			// Legacy lease without lease_terms.
			q.Amount = l.DepositAmount + l.MonthlyRent
			q.Breakdown = Breakdown{
				Deposit:  l.DepositAmount,
				BaseRent: l.MonthlyRent,
				Total:    q.Amount,
			}
		}

	case models.PaymentTypeMonthlyRent:
		q.PayerID = l.TenantID
		if cfg != nil {
			q.Amount = cfg.MonthlyTotal
			q.Breakdown = Breakdown{
				BaseRent: l.MonthlyRent,
				Extras:   cfg.Extras,
				Total:    cfg.MonthlyTotal,
			}
		} else {
			q.Amount = l.MonthlyRent
			q.Breakdown = Breakdown{BaseRent: l.MonthlyRent, Total: l.MonthlyRent}
		}

	case models.PaymentTypeAdminFee:
		q.PayerID = l.LandlordID
		q.Amount = lease.AdminFee
		q.Breakdown = Breakdown{Fee: lease.AdminFee, Total: lease.AdminFee}

	case models.PaymentTypeCancelPenalty:
		q.PayerID = l.TenantID
		q.Amount = lease.CancelPenalty
		q.Breakdown = Breakdown{Fee: lease.CancelPenalty, Total: lease.CancelPenalty}

	case models.PaymentTypeDepositReturn:
		q.PayerID = l.LandlordID
		if cfg != nil && !cfg.DepositRequired {
			return nil, ErrNoDeposit
		}
		if l.DepositAmount <= 0 {
			return nil, ErrNoDeposit
		}
		q.Amount = l.DepositAmount
		q.Breakdown = Breakdown{Deposit: l.DepositAmount, Total: l.DepositAmount}

	default:
		return nil, ErrUnknownType
	}

	if userID != q.PayerID {
		return nil, ErrNotAllowed
	}

	return q, nil
}

// TransactionReference builds the unique reference written onto a new
// Payment row: {TYPE}-{epoch_ms}-{first 8 chars of the lease id}.
func TransactionReference(paymentType models.PaymentType, leaseID string, now time.Time) string {
	short := leaseID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(string(paymentType)), now.UnixMilli(), short)
}
