package audit

import (
	"log"

	"gorm.io/gorm"

	"township-rental-portal/internal/models"
)

// Service records lease lifecycle events and serves them back for the
// admin feed and per-lease history.
type Service struct {
	db *gorm.DB
}

// NewService creates a new audit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record appends a lease event. Audit writes never fail the caller's
// operation; failures are logged and swallowed.
func (s *Service) Record(tx *gorm.DB, event *models.LeaseEvent) {
	if tx == nil {
		tx = s.db
	}
	if err := tx.Create(event).Error; err != nil {
		log.Printf("[Audit] failed to record %s for lease %s: %v", event.EventType, event.LeaseID, err)
	}
}

// RecordTransition is the common case: a status change on a lease
func (s *Service) RecordTransition(tx *gorm.DB, leaseID, eventType, actorID, oldStatus, newStatus string) {
	s.Record(tx, &models.LeaseEvent{
		LeaseID:   leaseID,
		EventType: eventType,
		ActorID:   actorID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

// LeaseHistory returns every event for one lease, oldest first
func (s *Service) LeaseHistory(leaseID string) ([]models.LeaseEvent, error) {
	var events []models.LeaseEvent
	err := s.db.Where("lease_id = ?", leaseID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// Recent returns the latest events across all leases for the admin feed
func (s *Service) Recent(limit int) ([]models.LeaseEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var events []models.LeaseEvent
	err := s.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
