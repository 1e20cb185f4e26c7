package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"township-rental-portal/internal/models"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Profile{},
		&models.Township{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Favorite{},
		&models.ViewingRequest{},
		&models.Application{},
		&models.Lease{},
		&models.Payment{},
		&models.Notification{},
		&models.LeaseEvent{},
		&models.DeleteLog{},
	)
}

// ListParams are the listing filters accepted by GET /api/properties
type ListParams struct {
	TownshipID   string
	PropertyType string
	MinRent      *float64
	MaxRent      *float64
	MinBedrooms  *int
	Status       string
	SortBy       string
	Limit        int
	Offset       int
}

// ListProperties retrieves listings matching the filters
func (gdb *GormDB) ListProperties(params ListParams) ([]models.Property, int64, error) {
	q := gdb.db.Model(&models.Property{})

	if params.TownshipID != "" {
		q = q.Where("township_id = ?", params.TownshipID)
	}
	if params.PropertyType != "" {
		q = q.Where("property_type = ?", params.PropertyType)
	}
	if params.MinRent != nil {
		q = q.Where("rent_amount >= ?", *params.MinRent)
	}
	if params.MaxRent != nil {
		q = q.Where("rent_amount <= ?", *params.MaxRent)
	}
	if params.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *params.MinBedrooms)
	}
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	} else {
		q = q.Where("status = ?", models.PropertyStatusAvailable)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Map sort parameter to an ORDER BY clause
	var orderClause string
	switch params.SortBy {
	case "rent_asc":
		orderClause = "rent_amount ASC"
	case "rent_desc":
		orderClause = "rent_amount DESC"
	case "oldest":
		orderClause = "created_at ASC"
	default:
		// Default to newest first
		orderClause = "created_at DESC"
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var properties []models.Property
	err := q.Order(orderClause).Limit(limit).Offset(params.Offset).Find(&properties).Error
	return properties, total, err
}

// GetPropertyByID retrieves a property by ID
func (gdb *GormDB) GetPropertyByID(id string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetPropertyImages retrieves a property's images in display order
func (gdb *GormDB) GetPropertyImages(propertyID string) ([]models.PropertyImage, error) {
	var images []models.PropertyImage
	err := gdb.db.Where("property_id = ?", propertyID).
		Order("sort_order ASC").
		Find(&images).Error
	return images, err
}

// SetPropertyStatus updates a property's listing status
func (gdb *GormDB) SetPropertyStatus(tx *gorm.DB, propertyID string, status models.PropertyStatus) error {
	if tx == nil {
		tx = gdb.db
	}
	result := tx.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTownships retrieves all townships ordered by name
func (gdb *GormDB) ListTownships() ([]models.Township, error) {
	var townships []models.Township
	err := gdb.db.Order("name ASC").Find(&townships).Error
	return townships, err
}

// GetProfile retrieves a user profile by ID
func (gdb *GormDB) GetProfile(id string) (*models.Profile, error) {
	var profile models.Profile
	err := gdb.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// HasConfirmedMoveInPayment reports whether a lease has a confirmed
// move-in payment. The lease activation gate depends on this.
func (gdb *GormDB) HasConfirmedMoveInPayment(tx *gorm.DB, leaseID string) (bool, error) {
	if tx == nil {
		tx = gdb.db
	}
	var count int64
	err := tx.Model(&models.Payment{}).
		Where("lease_id = ? AND payment_type = ? AND status = ?",
			leaseID, models.PaymentTypeMoveIn, models.PaymentStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}
