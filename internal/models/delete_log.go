package models

import "time"

// DeleteLog records rows physically removed by retention cleanup
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"type:varchar(40);not null;index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(36);not null;index" json:"entity_id"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonExpiredViewing      = "expired_viewing_request"
	DeleteReasonReadNotification    = "read_notification_retention"
	DeleteReasonManual              = "manual_deletion"
)
