package models

import "time"

// Lease is the agreement between a landlord and a tenant for a property.
// Pricing, signature and cancellation metadata live in the LeaseTerms JSON
// blob (see internal/lease); the columns here are what list views and
// queries need directly.
type Lease struct {
	ID            string `gorm:"type:varchar(36);primaryKey" json:"id"`
	LandlordID    string `gorm:"type:varchar(36);not null;index" json:"landlord_id"`
	TenantID      string `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	PropertyID    string `gorm:"type:varchar(36);not null;index" json:"property_id"`
	ApplicationID string `gorm:"type:varchar(36)" json:"application_id,omitempty"`

	StartDate     string  `gorm:"type:varchar(10);not null" json:"start_date"`
	EndDate       string  `gorm:"type:varchar(10);not null" json:"end_date"`
	MonthlyRent   float64 `gorm:"type:decimal(10,2);not null" json:"monthly_rent"`
	DepositAmount float64 `gorm:"type:decimal(10,2);not null" json:"deposit_amount"`

	Status   LeaseStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	IsActive bool        `gorm:"not null;default:false;index" json:"is_active"`
	IsSigned bool        `gorm:"not null;default:false" json:"is_signed"`
	SignedAt *time.Time  `json:"signed_at,omitempty"`

	// LeaseTerms holds the serialized lease config JSON; empty for leases
	// created before the config existed.
	LeaseTerms string `gorm:"type:text" json:"lease_terms,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_lease_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LeaseStatus is the coarse lifecycle state of a lease
type LeaseStatus string

const (
	LeaseStatusPending             LeaseStatus = "pending"
	LeaseStatusSigned              LeaseStatus = "signed"
	LeaseStatusActive              LeaseStatus = "active"
	LeaseStatusCancellationPending LeaseStatus = "cancellation_pending"
	LeaseStatusCancelled           LeaseStatus = "cancelled"
)

// TableName specifies the table name
func (Lease) TableName() string {
	return "leases"
}
