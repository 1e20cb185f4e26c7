package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/cleanup"
	"township-rental-portal/internal/config"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/lifecycle"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
	"township-rental-portal/internal/payments"
)

// Scheduler runs the daily billing pass: monthly rent generation, overdue
// marking, cancellation finalization and the retention cleanup.
type Scheduler struct {
	cron      *cron.Cron
	gdb       *database.GormDB
	config    *config.Config
	audit     *audit.Service
	notify    *notify.Service
	cleanup   *cleanup.Service
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(gdb *database.GormDB, cfg *config.Config) *Scheduler {
	db := gdb.DB()
	return &Scheduler{
		cron:    cron.New(),
		gdb:     gdb,
		config:  cfg,
		audit:   audit.NewService(db),
		notify:  notify.NewService(db),
		cleanup: cleanup.NewService(db),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.Enabled {
		log.Println("Scheduler: Daily run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily billing job...")
		if err := s.runDailyBilling(); err != nil {
			log.Printf("Scheduler: Daily billing failed: %v", err)
		} else {
			log.Println("Scheduler: Daily billing completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunNow immediately executes the daily billing job (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("Scheduler: Manual trigger - starting daily billing job...")
	return s.runDailyBilling()
}

// runDailyBilling executes the daily billing routine
func (s *Scheduler) runDailyBilling() error {
	now := time.Now()

	generated, err := s.GenerateMonthlyRent(now)
	if err != nil {
		log.Printf("Scheduler: Monthly rent generation failed: %v", err)
	} else if generated > 0 {
		log.Printf("Scheduler: Generated %d monthly rent payments", generated)
	}

	overdue, err := s.MarkOverduePayments(now)
	if err != nil {
		log.Printf("Scheduler: Overdue marking failed: %v", err)
	} else if overdue > 0 {
		log.Printf("Scheduler: Marked %d payments overdue", overdue)
	}

	finalized, err := s.FinalizeCancellations(now)
	if err != nil {
		log.Printf("Scheduler: Cancellation finalization failed: %v", err)
	} else if finalized > 0 {
		log.Printf("Scheduler: Finalized %d cancellations", finalized)
	}

	if s.config.Cleanup.Enabled {
		_, err := s.cleanup.Run(cleanup.CleanupConfig{
			ViewingRetentionDays:      s.config.Cleanup.ViewingRetentionDays,
			NotificationRetentionDays: s.config.Cleanup.NotificationRetentionDays,
			MaxDeletionCount:          s.config.Cleanup.MaxDeletesPerRun,
			DryRun:                    s.config.Cleanup.DryRun,
		})
		if err != nil {
			log.Printf("Scheduler: Cleanup failed: %v", err)
		}
	}

	return nil
}

// GenerateMonthlyRent creates this month's rent payment for every active
// lease whose rent due day is today. Idempotent: a lease gets at most one
// monthly_rent payment per due date.
func (s *Scheduler) GenerateMonthlyRent(now time.Time) (int, error) {
	db := s.gdb.DB()

	var leases []models.Lease
	if err := db.Where("is_active = ? AND status = ?", true, models.LeaseStatusActive).
		Find(&leases).Error; err != nil {
		return 0, err
	}

	generated := 0
	for _, l := range leases {
		cfg := lease.Migrate(lease.ParseConfig(l.LeaseTerms), &l)

		rentDueDay := 1
		if cfg != nil && cfg.RentDueDay > 0 {
			rentDueDay = cfg.RentDueDay
		}
		// Clamp for short months: a due day of 25 in February bills on
		// the last day of the month.
		if last := lastDayOfMonth(now); rentDueDay > last {
			rentDueDay = last
		}
		if now.Day() != rentDueDay {
			continue
		}

		dueDate := time.Date(now.Year(), now.Month(), rentDueDay, 0, 0, 0, 0, now.Location()).Format("2006-01-02")

		var existing int64
		if err := db.Model(&models.Payment{}).
			Where("lease_id = ? AND payment_type = ? AND due_date = ?",
				l.ID, models.PaymentTypeMonthlyRent, dueDate).
			Count(&existing).Error; err != nil {
			return generated, err
		}
		if existing > 0 {
			continue
		}

		quote, err := payments.Resolve(&l, cfg, models.PaymentTypeMonthlyRent, l.TenantID)
		if err != nil {
			log.Printf("Scheduler: Cannot resolve monthly rent for lease %s: %v", l.ID, err)
			continue
		}

		payment := &models.Payment{
			ID:                   uuid.NewString(),
			LeaseID:              l.ID,
			TenantID:             l.TenantID,
			LandlordID:           l.LandlordID,
			PropertyID:           l.PropertyID,
			PaymentType:          models.PaymentTypeMonthlyRent,
			Status:               models.PaymentStatusPending,
			Amount:               quote.Amount,
			DueDate:              dueDate,
			TransactionReference: payments.TransactionReference(models.PaymentTypeMonthlyRent, l.ID, now),
		}
		if err := db.Create(payment).Error; err != nil {
			log.Printf("Scheduler: Failed to create monthly rent payment for lease %s: %v", l.ID, err)
			continue
		}

		s.notify.PaymentDue(l.TenantID, quote.Amount, dueDate)
		generated++

		// Keep transaction references unique when several leases bill in
		// the same millisecond.
		now = now.Add(time.Millisecond)
	}

	return generated, nil
}

// MarkOverduePayments flips pending monthly rent payments past their due
// date to overdue and notifies the tenant.
func (s *Scheduler) MarkOverduePayments(now time.Time) (int, error) {
	db := s.gdb.DB()
	today := now.Format("2006-01-02")

	var due []models.Payment
	if err := db.Where("status = ? AND payment_type = ? AND due_date <> '' AND due_date < ?",
		models.PaymentStatusPending, models.PaymentTypeMonthlyRent, today).
		Find(&due).Error; err != nil {
		return 0, err
	}

	marked := 0
	for _, p := range due {
		if err := db.Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusOverdue).Error; err != nil {
			log.Printf("Scheduler: Failed to mark payment %s overdue: %v", p.ID, err)
			continue
		}
		s.notify.PaymentOverdue(p.TenantID, p.Amount, p.DueDate)
		marked++
	}

	return marked, nil
}

// FinalizeCancellations closes cancellation-pending leases whose notice
// period has elapsed and releases their properties.
func (s *Scheduler) FinalizeCancellations(now time.Time) (int, error) {
	db := s.gdb.DB()
	today := now.Format("2006-01-02")

	var pending []models.Lease
	if err := db.Where("status = ? AND end_date <= ?",
		models.LeaseStatusCancellationPending, today).
		Find(&pending).Error; err != nil {
		return 0, err
	}

	finalized := 0
	for i := range pending {
		l := &pending[i]
		oldStatus := string(l.Status)

		if err := lifecycle.FinalizeCancellation(l); err != nil {
			log.Printf("Scheduler: Cannot finalize lease %s: %v", l.ID, err)
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Lease{}).Where("id = ?", l.ID).
				Update("status", l.Status).Error; err != nil {
				return err
			}
			if err := s.gdb.SetPropertyStatus(tx, l.PropertyID, models.PropertyStatusAvailable); err != nil {
				return err
			}
			s.audit.RecordTransition(tx, l.ID, models.LeaseEventCancelled, "", oldStatus, string(l.Status))
			return nil
		})
		if err != nil {
			log.Printf("Scheduler: Failed to finalize lease %s: %v", l.ID, err)
			continue
		}

		s.notify.LeaseCancelled(l.TenantID, l.PropertyID, l.EndDate)
		s.notify.LeaseCancelled(l.LandlordID, l.PropertyID, l.EndDate)
		finalized++
	}

	return finalized, nil
}

func lastDayOfMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 2:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 02:00", timeStr)
	return "0 2 * * *"
}
