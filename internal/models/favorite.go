package models

import "time"

// Favorite marks a property saved by a tenant
type Favorite struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_fav_pair" json:"tenant_id"`
	PropertyID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_fav_pair" json:"property_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Favorite) TableName() string {
	return "favorites"
}
