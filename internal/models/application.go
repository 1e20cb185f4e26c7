package models

import "time"

// Application is a tenant's rental application for a property. A tenant may
// hold at most one application per property (composite unique index); the
// handler additionally gates creation on a confirmed or completed viewing.
type Application struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_pair,priority:1" json:"tenant_id"`
	PropertyID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_pair,priority:2" json:"property_id"`
	LandlordID string `gorm:"type:varchar(36);not null;index" json:"landlord_id"`

	Status ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	ProposedMoveInDate     string  `gorm:"type:varchar(10)" json:"proposed_move_in_date,omitempty"`
	LeaseDurationRequested int     `gorm:"type:int" json:"lease_duration_requested,omitempty"`
	MonthlyIncome          float64 `gorm:"type:decimal(10,2)" json:"monthly_income,omitempty"`
	EmploymentStatus       string  `gorm:"type:varchar(50)" json:"employment_status,omitempty"`
	Message                string  `gorm:"type:text" json:"message,omitempty"`
	RejectionReason        string  `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// TableName specifies the table name
func (Application) TableName() string {
	return "applications"
}

// IsTerminal reports whether the application can no longer change state
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusApproved || a.Status == ApplicationStatusRejected
}
