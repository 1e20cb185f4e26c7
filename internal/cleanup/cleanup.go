package cleanup

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"township-rental-portal/internal/models"
)

// Service physically deletes aged terminal viewing requests and read
// notifications, logging every removal.
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	ViewingRetentionDays      int  // Days to keep terminal viewing requests
	NotificationRetentionDays int  // Days to keep read notifications
	MaxDeletionCount          int  // Maximum rows deleted in one run (safety limit)
	DryRun                    bool // If true, only log what would be deleted
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		ViewingRetentionDays:      180,
		NotificationRetentionDays: 90,
		MaxDeletionCount:          500,
		DryRun:                    false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount          int       `json:"target_count"`
	DeletedViewings      int       `json:"deleted_viewings"`
	DeletedNotifications int       `json:"deleted_notifications"`
	ErrorCount           int       `json:"error_count"`
	DryRun               bool      `json:"dry_run"`
	ExecutedAt           time.Time `json:"executed_at"`
	Errors               []string  `json:"errors,omitempty"`
}

// terminalViewingStatuses are the states with no further action possible
var terminalViewingStatuses = []models.ViewingStatus{
	models.ViewingStatusCompleted,
	models.ViewingStatusDeclined,
	models.ViewingStatusCancelled,
	models.ViewingStatusApplicationSubmitted,
}

// FindExpiredViewings finds terminal viewing requests older than the
// retention window.
func (s *Service) FindExpiredViewings(retentionDays int) ([]models.ViewingRequest, error) {
	var viewings []models.ViewingRequest

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("status IN ? AND updated_at < ?", terminalViewingStatuses, cutoffDate).
		Find(&viewings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired viewing requests: %w", err)
	}

	log.Printf("Found %d viewing requests expired before %s", len(viewings), cutoffDate.Format("2006-01-02"))
	return viewings, nil
}

// FindExpiredNotifications finds read notifications older than the
// retention window.
func (s *Service) FindExpiredNotifications(retentionDays int) ([]models.Notification, error) {
	var notifications []models.Notification

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("`read` = ? AND created_at < ?", true, cutoffDate).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired notifications: %w", err)
	}

	return notifications, nil
}

// Run performs the retention pass
func (s *Service) Run(config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expiredViewings, err := s.FindExpiredViewings(config.ViewingRetentionDays)
	if err != nil {
		return nil, err
	}
	expiredNotifications, err := s.FindExpiredNotifications(config.NotificationRetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expiredViewings) + len(expiredNotifications)

	if result.TargetCount == 0 {
		log.Println("No expired rows found for cleanup")
		return result, nil
	}

	// Safety check: abort if too many rows would be deleted.
	if config.MaxDeletionCount > 0 && result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d rows exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("Starting cleanup: %d viewing requests, %d notifications (dry-run: %v)",
		len(expiredViewings), len(expiredNotifications), config.DryRun)

	for _, v := range expiredViewings {
		if config.DryRun {
			log.Printf("[DRY-RUN] Would delete viewing request %s (status: %s)", v.ID, v.Status)
			result.DeletedViewings++
			continue
		}

		if err := s.deleteWithLog("viewing_request", v.ID, models.DeleteReasonExpiredViewing, &v); err != nil {
			result.Errors = append(result.Errors, err.Error())
			result.ErrorCount++
			continue
		}
		result.DeletedViewings++
	}

	for _, n := range expiredNotifications {
		if config.DryRun {
			log.Printf("[DRY-RUN] Would delete notification %s for user %s", n.ID, n.UserID)
			result.DeletedNotifications++
			continue
		}

		if err := s.deleteWithLog("notification", n.ID, models.DeleteReasonReadNotification, &n); err != nil {
			result.Errors = append(result.Errors, err.Error())
			result.ErrorCount++
			continue
		}
		result.DeletedNotifications++
	}

	log.Printf("Cleanup completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedViewings+result.DeletedNotifications, result.TargetCount,
		result.ErrorCount, config.DryRun)

	return result, nil
}

// deleteWithLog removes one row and its delete log entry atomically
func (s *Service) deleteWithLog(entityType, entityID, reason string, row interface{}) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		deleteLog := models.DeleteLog{
			EntityType: entityType,
			EntityID:   entityID,
			Reason:     reason,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}
		return tx.Delete(row).Error
	})
	if err != nil {
		msg := fmt.Sprintf("failed to delete %s %s: %v", entityType, entityID, err)
		log.Printf("ERROR: %s", msg)
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// GetDeleteStats returns statistics about cleaned-up rows
func (s *Service) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	return stats, nil
}
