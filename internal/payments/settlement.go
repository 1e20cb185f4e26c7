package payments

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/lifecycle"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
)

// Settlement applies gateway outcomes to payments. Both the webhook
// handler and the verification worker funnel through here so a confirmed
// move-in payment activates its lease exactly once, whichever path
// reports it first.
type Settlement struct {
	gdb    *database.GormDB
	audit  *audit.Service
	notify *notify.Service
}

// NewSettlement creates a settlement processor
func NewSettlement(gdb *database.GormDB, auditSvc *audit.Service, notifySvc *notify.Service) *Settlement {
	return &Settlement{gdb: gdb, audit: auditSvc, notify: notifySvc}
}

// Apply moves a payment to newStatus and runs the follow-on effects in
// one transaction. A payment that already left pending is not touched
// again.
func (s *Settlement) Apply(paymentID string, newStatus models.PaymentStatus) error {
	db := s.gdb.DB()

	var applied, activated bool
	var payment models.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			return err
		}

		if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusOverdue {
			// Already settled by the other path.
			return nil
		}
		applied = true

		updates := map[string]interface{}{
			"status":         newStatus,
			"payment_method": "ozow",
		}
		if newStatus == models.PaymentStatusConfirmed {
			today := time.Now().Format("2006-01-02")
			updates["paid_date"] = &today
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		payment.Status = newStatus

		if newStatus != models.PaymentStatusConfirmed {
			return nil
		}

		s.audit.Record(tx, &models.LeaseEvent{
			LeaseID:   payment.LeaseID,
			EventType: models.LeaseEventPaymentConfirmed,
			ActorID:   payment.TenantID,
			Note:      fmt.Sprintf("%s payment of %s confirmed", payment.PaymentType, lease.FormatCurrency(payment.Amount)),
		})

		if payment.PaymentType != models.PaymentTypeMoveIn {
			return nil
		}

		// A confirmed move-in payment is the sole activator of a lease.
		var l models.Lease
		if err := tx.Where("id = ?", payment.LeaseID).First(&l).Error; err != nil {
			return err
		}

		cfg := lease.Migrate(lease.ParseConfig(l.LeaseTerms), &l)
		gate := lifecycle.CanActivate(&l, cfg, true)
		if !gate.Allowed {
			log.Printf("[Payments] move-in confirmed but lease %s not activated: %s", l.ID, gate.Reason)
			return nil
		}

		oldStatus := string(l.Status)
		lifecycle.Activate(&l)
		if err := tx.Model(&models.Lease{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
			"is_active": true,
			"status":    l.Status,
		}).Error; err != nil {
			return err
		}

		if err := s.gdb.SetPropertyStatus(tx, l.PropertyID, models.PropertyStatusOccupied); err != nil {
			return err
		}

		s.audit.RecordTransition(tx, l.ID, models.LeaseEventActivated, payment.TenantID, oldStatus, string(l.Status))
		activated = true
		return nil
	})
	if err != nil {
		return err
	}

	// Notifications go out after the transaction commits.
	if applied && payment.Status == models.PaymentStatusConfirmed {
		property, perr := s.gdb.GetPropertyByID(payment.PropertyID)
		title := payment.PropertyID
		if perr == nil {
			title = property.Title
		}

		s.notify.PaymentReceived(payment.LandlordID, payment.Amount, string(payment.PaymentType), title)
		if activated {
			s.notify.LeaseActivated(payment.TenantID, title)
			s.notify.LeaseActivated(payment.LandlordID, title)
		}
	}

	return nil
}
