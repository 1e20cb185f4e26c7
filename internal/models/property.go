package models

import "time"

type Property struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	LandlordID  string `gorm:"type:varchar(36);not null;index" json:"landlord_id"`
	TownshipID  string `gorm:"type:varchar(36);index" json:"township_id,omitempty"`
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Address     string `gorm:"type:text" json:"address,omitempty"`

	// Filter attributes
	PropertyType  string  `gorm:"type:varchar(30);index" json:"property_type,omitempty"`
	Bedrooms      *int    `gorm:"type:int;index" json:"bedrooms,omitempty"`
	RentAmount    float64 `gorm:"type:decimal(10,2);not null;index" json:"rent_amount"`
	DepositAmount float64 `gorm:"type:decimal(10,2);not null" json:"deposit_amount"`

	// Listing status
	Status PropertyStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyStatus is the listing status of a property
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusOccupied  PropertyStatus = "occupied"
	PropertyStatusUnlisted  PropertyStatus = "unlisted"
)

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// IsAvailable reports whether the property can accept viewings and applications
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable
}

// PropertyType constants
const (
	PropertyTypeRoom        = "room"
	PropertyTypeBackroom    = "backroom"
	PropertyTypeCottage     = "cottage"
	PropertyTypeHouse       = "house"
	PropertyTypeSharedHouse = "shared_house"
)
