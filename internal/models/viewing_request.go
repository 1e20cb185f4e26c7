package models

import "time"

// ViewingRequest is a tenant's request to view a property before applying.
// Only the landlord may confirm, decline or mark it completed; either party
// may cancel while it is not terminal.
type ViewingRequest struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_viewing_pair,priority:2" json:"property_id"`
	TenantID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_viewing_pair,priority:1" json:"tenant_id"`
	LandlordID string `gorm:"type:varchar(36);not null;index" json:"landlord_id"`

	Status ViewingStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`

	RequestedDate string `gorm:"type:varchar(10);not null" json:"requested_date"`
	RequestedTime string `gorm:"type:varchar(8);not null" json:"requested_time"`
	ConfirmedDate *string `gorm:"type:varchar(10)" json:"confirmed_date,omitempty"`
	ConfirmedTime *string `gorm:"type:varchar(8)" json:"confirmed_time,omitempty"`

	LandlordResponse string `gorm:"type:text" json:"landlord_response,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ViewingStatus is the lifecycle state of a viewing request
type ViewingStatus string

const (
	ViewingStatusPending   ViewingStatus = "pending"
	ViewingStatusConfirmed ViewingStatus = "confirmed"
	ViewingStatusCompleted ViewingStatus = "completed"
	ViewingStatusDeclined  ViewingStatus = "declined"
	ViewingStatusCancelled ViewingStatus = "cancelled"
	// ViewingStatusApplicationSubmitted marks a confirmed viewing that has
	// already produced an application, so it no longer shows as actionable.
	ViewingStatusApplicationSubmitted ViewingStatus = "application_submitted"
)

// TableName specifies the table name
func (ViewingRequest) TableName() string {
	return "viewing_requests"
}

// IsTerminal reports whether no further landlord action applies
func (v *ViewingRequest) IsTerminal() bool {
	switch v.Status {
	case ViewingStatusCompleted, ViewingStatusDeclined, ViewingStatusCancelled, ViewingStatusApplicationSubmitted:
		return true
	}
	return false
}
