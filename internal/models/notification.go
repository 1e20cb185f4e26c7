package models

import "time"

// Notification is an in-app message shown on a user's dashboard bell
type Notification struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID  string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type    string `gorm:"type:varchar(40);not null" json:"type"`
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Message string `gorm:"type:text" json:"message,omitempty"`
	Link    string `gorm:"type:text" json:"link,omitempty"`
	Read    bool   `gorm:"not null;default:false;index" json:"read"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotificationViewingConfirmed    = "viewing_confirmed"
	NotificationViewingDeclined     = "viewing_declined"
	NotificationApplicationReceived = "application_received"
	NotificationApplicationApproved = "application_approved"
	NotificationApplicationRejected = "application_rejected"
	NotificationLeaseCreated        = "lease_created"
	NotificationLeaseSigned         = "lease_signed"
	NotificationLeaseActivated      = "lease_activated"
	NotificationLeaseCancelled      = "lease_cancelled"
	NotificationPaymentReceived     = "payment_received"
	NotificationPaymentDue          = "payment_due"
	NotificationPaymentOverdue      = "payment_overdue"
)
