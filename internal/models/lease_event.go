package models

import "time"

// LeaseEvent records a lease lifecycle transition for auditing. Every
// mutation path appends one; the admin feed and per-lease history read them.
type LeaseEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID   string    `gorm:"type:varchar(36);not null;index" json:"lease_id"`
	EventType string    `gorm:"type:varchar(40);not null" json:"event_type"`
	ActorID   string    `gorm:"type:varchar(36)" json:"actor_id,omitempty"`
	OldStatus string    `gorm:"type:varchar(30)" json:"old_status,omitempty"`
	NewStatus string    `gorm:"type:varchar(30)" json:"new_status,omitempty"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (LeaseEvent) TableName() string {
	return "lease_events"
}

// EventType constants
const (
	LeaseEventCreated               = "lease_created"
	LeaseEventLandlordSigned        = "landlord_signed"
	LeaseEventTenantSigned          = "tenant_signed"
	LeaseEventFullySigned           = "fully_signed"
	LeaseEventActivated             = "activated"
	LeaseEventCancellationRequested = "cancellation_requested"
	LeaseEventCancelled             = "cancelled"
	LeaseEventPaymentConfirmed      = "payment_confirmed"
)
