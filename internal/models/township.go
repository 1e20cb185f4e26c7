package models

import "time"

// Township represents a township area that properties belong to
type Township struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
	City      string    `gorm:"type:varchar(120);not null;index" json:"city"`
	Province  string    `gorm:"type:varchar(60);not null" json:"province"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Township) TableName() string {
	return "townships"
}
