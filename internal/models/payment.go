package models

import "time"

// Payment is a money movement initiated against a lease. The amount and
// breakdown are fixed at creation time by the amount resolver and never
// recomputed afterwards.
type Payment struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	LeaseID    string `gorm:"type:varchar(36);not null;index" json:"lease_id"`
	TenantID   string `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	LandlordID string `gorm:"type:varchar(36);not null;index" json:"landlord_id"`
	PropertyID string `gorm:"type:varchar(36);not null;index" json:"property_id"`

	PaymentType PaymentType   `gorm:"type:varchar(20);not null;index" json:"payment_type"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	Amount   float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate  string  `gorm:"type:varchar(10)" json:"due_date,omitempty"`
	PaidDate *string `gorm:"type:varchar(10)" json:"paid_date,omitempty"`

	PaymentMethod        string `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	TransactionReference string `gorm:"type:varchar(100);not null;uniqueIndex" json:"transaction_reference"`

	// Breakdown holds the serialized amount breakdown shown to the payer.
	Breakdown string `gorm:"type:text" json:"breakdown,omitempty"`

	// Gateway verification bookkeeping used by the background worker.
	VerifyAttempts int        `gorm:"not null;default:0" json:"verify_attempts"`
	NextVerifyAt   *time.Time `gorm:"index" json:"next_verify_at,omitempty"`
	LastError      string     `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentType identifies what a payment is for
type PaymentType string

const (
	PaymentTypeMoveIn        PaymentType = "move_in"
	PaymentTypeMonthlyRent   PaymentType = "monthly_rent"
	PaymentTypeAdminFee      PaymentType = "admin_fee"
	PaymentTypeCancelPenalty PaymentType = "cancel_penalty"
	PaymentTypeDepositReturn PaymentType = "deposit_return"
)

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// MaxVerifyAttempts before the worker stops polling the gateway for a payment
const MaxVerifyAttempts = 5

// NextVerifyDelay returns the backoff before the next gateway status poll
func NextVerifyDelay(attempts int) time.Duration {
	delays := []time.Duration{
		5 * time.Minute,
		15 * time.Minute,
		1 * time.Hour,
		4 * time.Hour,
		12 * time.Hour,
	}

	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
