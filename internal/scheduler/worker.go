package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"township-rental-portal/internal/database"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/payments"
)

// VerificationWorker polls the payment gateway for pending payments whose
// webhook never arrived. Each payment is retried on a backoff schedule
// until it settles or runs out of attempts.
type VerificationWorker struct {
	gdb          *database.GormDB
	gateway      *payments.Gateway
	settlement   *payments.Settlement
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
}

// NewVerificationWorker creates a new verification worker
func NewVerificationWorker(gdb *database.GormDB, gateway *payments.Gateway, settlement *payments.Settlement, pollInterval time.Duration) *VerificationWorker {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &VerificationWorker{
		gdb:          gdb,
		gateway:      gateway,
		settlement:   settlement,
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
	}
}

// Start starts the verification worker
func (w *VerificationWorker) Start() {
	if w.isRunning {
		log.Println("VerificationWorker: Already running")
		return
	}
	if !w.gateway.Enabled() {
		log.Println("VerificationWorker: Gateway disabled, worker not started")
		return
	}

	w.isRunning = true
	log.Printf("VerificationWorker: Started (poll_interval=%v)", w.pollInterval)

	go w.run()
}

// Stop stops the verification worker
func (w *VerificationWorker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("VerificationWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// WorkerStats describes the verification worker for the admin surface
type WorkerStats struct {
	Running       bool   `json:"running"`
	PollInterval  string `json:"poll_interval"`
	PendingChecks int64  `json:"pending_checks"`
	Exhausted     int64  `json:"exhausted"`
}

// Stats counts payments still on the verification schedule and those that
// ran out of attempts.
func (w *VerificationWorker) Stats() WorkerStats {
	db := w.gdb.DB()
	stats := WorkerStats{
		Running:      w.isRunning,
		PollInterval: w.pollInterval.String(),
	}

	db.Model(&models.Payment{}).
		Where("status = ? AND verify_attempts < ? AND next_verify_at IS NOT NULL",
			models.PaymentStatusPending, models.MaxVerifyAttempts).
		Count(&stats.PendingChecks)
	db.Model(&models.Payment{}).
		Where("status = ? AND verify_attempts >= ?",
			models.PaymentStatusPending, models.MaxVerifyAttempts).
		Count(&stats.Exhausted)

	return stats
}

// run is the main worker loop
func (w *VerificationWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("VerificationWorker: Stopped")
			return
		case <-ticker.C:
			w.processNext()
		}
	}
}

// processNext verifies the next payment due for a gateway status check
func (w *VerificationWorker) processNext() {
	db := w.gdb.DB()
	now := time.Now()

	var payment models.Payment
	result := db.Where("status = ? AND verify_attempts < ? AND next_verify_at IS NOT NULL AND next_verify_at <= ?",
		models.PaymentStatusPending, models.MaxVerifyAttempts, now).
		Order("next_verify_at ASC").
		First(&payment)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Printf("VerificationWorker: Error fetching next payment: %v", result.Error)
		}
		return
	}

	w.verifyPayment(&payment)
}

// verifyPayment polls the gateway once for a payment and applies the result
func (w *VerificationWorker) verifyPayment(p *models.Payment) {
	log.Printf("VerificationWorker: Verifying payment %s (ref=%s, attempt=%d)",
		p.ID, p.TransactionReference, p.VerifyAttempts+1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	status, err := w.gateway.GetTransactionStatus(ctx, p.TransactionReference)
	if err != nil {
		if errors.Is(err, payments.ErrBreakerOpen) {
			// Breaker open: leave the schedule untouched and retry on a
			// later tick.
			log.Printf("VerificationWorker: Circuit open, deferring payment %s", p.ID)
			return
		}
		w.recordFailure(p, err)
		return
	}

	mapped, ok := payments.MapGatewayStatus(status.Status)
	if !ok {
		// Still in flight on the gateway side. Schedule the next check.
		w.recordFailure(p, errors.New("gateway status still pending"))
		return
	}

	if err := w.settlement.Apply(p.ID, mapped); err != nil {
		log.Printf("VerificationWorker: Failed to settle payment %s: %v", p.ID, err)
		w.recordFailure(p, err)
		return
	}

	log.Printf("VerificationWorker: Payment %s settled as %s", p.ID, mapped)
}

// recordFailure advances the backoff schedule for a payment
func (w *VerificationWorker) recordFailure(p *models.Payment, cause error) {
	attempts := p.VerifyAttempts + 1

	updates := map[string]interface{}{
		"verify_attempts": attempts,
		"last_error":      cause.Error(),
	}

	if attempts >= models.MaxVerifyAttempts {
		// Out of attempts: stop polling and leave the payment pending for
		// the webhook or manual reconciliation.
		updates["next_verify_at"] = nil
		log.Printf("VerificationWorker: Payment %s exhausted %d verify attempts: %v", p.ID, attempts, cause)
	} else {
		next := time.Now().Add(models.NextVerifyDelay(attempts))
		updates["next_verify_at"] = &next
	}

	if err := w.gdb.DB().Model(&models.Payment{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		log.Printf("VerificationWorker: Failed to update payment %s schedule: %v", p.ID, err)
	}
}
