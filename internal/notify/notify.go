package notify

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

// Service writes in-app notifications. Notification failures never fail
// the operation that triggered them; they are logged and swallowed.
type Service struct {
	db *gorm.DB
}

// NewService creates a new notification service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) create(userID, notifType, title, message, link string) {
	n := &models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.db.Create(n).Error; err != nil {
		log.Printf("[Notify] failed to create %s notification for user %s: %v", notifType, userID, err)
	}
}

// ViewingConfirmed tells the tenant their viewing was confirmed
func (s *Service) ViewingConfirmed(tenantID, propertyTitle, confirmedDate string) {
	s.create(tenantID, models.NotificationViewingConfirmed,
		"Viewing Confirmed",
		fmt.Sprintf("Your viewing of %s is confirmed for %s", propertyTitle, confirmedDate),
		"/tenant/viewings")
}

// ViewingDeclined tells the tenant their viewing was declined
func (s *Service) ViewingDeclined(tenantID, propertyTitle string) {
	s.create(tenantID, models.NotificationViewingDeclined,
		"Viewing Declined",
		fmt.Sprintf("Your viewing request for %s was declined", propertyTitle),
		"/tenant/viewings")
}

// ApplicationReceived tells the landlord a tenant applied
func (s *Service) ApplicationReceived(landlordID, tenantName, propertyTitle, applicationID string) {
	s.create(landlordID, models.NotificationApplicationReceived,
		"New Application Received",
		fmt.Sprintf("%s has applied for %s", tenantName, propertyTitle),
		"/landlord/applications/"+applicationID)
}

// ApplicationApproved congratulates the tenant
func (s *Service) ApplicationApproved(tenantID, propertyTitle, applicationID string) {
	s.create(tenantID, models.NotificationApplicationApproved,
		"Application Approved!",
		fmt.Sprintf("Congratulations! Your application for %s has been approved.", propertyTitle),
		"/tenant/applications/"+applicationID)
}

// ApplicationRejected tells the tenant their application was declined
func (s *Service) ApplicationRejected(tenantID, propertyTitle, applicationID string) {
	s.create(tenantID, models.NotificationApplicationRejected,
		"Application Update",
		fmt.Sprintf("Your application for %s has been declined.", propertyTitle),
		"/tenant/applications/"+applicationID)
}

// LeaseCreated invites the tenant to review and sign a new lease
func (s *Service) LeaseCreated(tenantID, landlordName, propertyTitle string) {
	s.create(tenantID, models.NotificationLeaseCreated,
		"Lease Invitation",
		fmt.Sprintf("%s has sent you a lease for %s. Review and sign to proceed.", landlordName, propertyTitle),
		"/tenant/leases")
}

// LeaseSigned tells the other party the lease is fully signed
func (s *Service) LeaseSigned(userID, propertyTitle string) {
	s.create(userID, models.NotificationLeaseSigned,
		"Lease Fully Signed",
		fmt.Sprintf("The lease for %s has been signed by both parties. Awaiting move-in payment.", propertyTitle),
		"/tenant/leases")
}

// LeaseActivated tells both parties the lease is active
func (s *Service) LeaseActivated(userID, propertyTitle string) {
	s.create(userID, models.NotificationLeaseActivated,
		"Lease Active",
		fmt.Sprintf("The lease for %s is now active.", propertyTitle),
		"/tenant/leases")
}

// LeaseCancelled tells the other party a cancellation was requested
func (s *Service) LeaseCancelled(userID, propertyTitle, effectiveDate string) {
	s.create(userID, models.NotificationLeaseCancelled,
		"Lease Cancellation",
		fmt.Sprintf("The lease for %s has been cancelled, effective %s.", propertyTitle, effectiveDate),
		"/tenant/leases")
}

// PaymentReceived tells the landlord a payment was confirmed
func (s *Service) PaymentReceived(landlordID string, amount float64, paymentType, propertyTitle string) {
	s.create(landlordID, models.NotificationPaymentReceived,
		"Payment Received",
		fmt.Sprintf("Payment of %s (%s) received for %s", lease.FormatCurrency(amount), paymentType, propertyTitle),
		"/landlord/payments")
}

// PaymentDue tells the tenant a new rent payment is due
func (s *Service) PaymentDue(tenantID string, amount float64, dueDate string) {
	s.create(tenantID, models.NotificationPaymentDue,
		"Rent Due",
		fmt.Sprintf("Your rent payment of %s is due on %s.", lease.FormatCurrency(amount), dueDate),
		"/tenant/payments")
}

// PaymentOverdue tells the tenant a payment is overdue
func (s *Service) PaymentOverdue(tenantID string, amount float64, dueDate string) {
	s.create(tenantID, models.NotificationPaymentOverdue,
		"Payment Overdue",
		fmt.Sprintf("Your payment of %s was due on %s. Please settle it to keep your lease in good standing.", lease.FormatCurrency(amount), dueDate),
		"/tenant/payments")
}

// ListForUser returns a user's notifications, newest first
func (s *Service) ListForUser(userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkRead marks one notification as read for its owner
func (s *Service) MarkRead(userID, notificationID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for a user as read
func (s *Service) MarkAllRead(userID string) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
