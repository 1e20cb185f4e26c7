package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/cleanup"
	"township-rental-portal/internal/config"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/payments"
	"township-rental-portal/internal/ratelimit"
	"township-rental-portal/internal/scheduler"
	"township-rental-portal/internal/search"
)

// AdminHandler handles operational endpoints
type AdminHandler struct {
	gdb            *database.GormDB
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
	cleanupConfig  cleanup.CleanupConfig
	auditService   *audit.Service
	searchClient   *search.SearchClient
	rateLimiter    *ratelimit.RateLimiter
	gateway        *payments.Gateway
	worker         *scheduler.VerificationWorker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(gdb *database.GormDB, sched *scheduler.Scheduler, cfg *config.Config,
	searchClient *search.SearchClient, limiter *ratelimit.RateLimiter, gateway *payments.Gateway,
	worker *scheduler.VerificationWorker) *AdminHandler {
	return &AdminHandler{
		gdb:            gdb,
		scheduler:      sched,
		cleanupService: cleanup.NewService(gdb.DB()),
		cleanupConfig: cleanup.CleanupConfig{
			ViewingRetentionDays:      cfg.Cleanup.ViewingRetentionDays,
			NotificationRetentionDays: cfg.Cleanup.NotificationRetentionDays,
			MaxDeletionCount:          cfg.Cleanup.MaxDeletesPerRun,
			DryRun:                    cfg.Cleanup.DryRun,
		},
		auditService: audit.NewService(gdb.DB()),
		searchClient: searchClient,
		rateLimiter:  limiter,
		gateway:      gateway,
		worker:       worker,
	}
}

// GetStats returns entity counts by status
func (h *AdminHandler) GetStats(c *gin.Context) {
	db := h.gdb.DB()
	stats := make(map[string]interface{})

	countByStatus := func(model interface{}, statuses []string) map[string]interface{} {
		out := make(map[string]interface{}, len(statuses)+1)
		var total int64
		db.Model(model).Count(&total)
		out["total"] = total
		for _, status := range statuses {
			var n int64
			db.Model(model).Where("status = ?", status).Count(&n)
			out[status] = n
		}
		return out
	}

	stats["properties"] = countByStatus(&models.Property{},
		[]string{"available", "occupied", "unlisted"})
	stats["viewings"] = countByStatus(&models.ViewingRequest{},
		[]string{"pending", "confirmed", "declined", "completed", "cancelled", "application_submitted"})
	stats["applications"] = countByStatus(&models.Application{},
		[]string{"pending", "approved", "rejected"})
	stats["leases"] = countByStatus(&models.Lease{},
		[]string{"pending", "signed", "active", "cancellation_pending", "cancelled"})
	stats["payments"] = countByStatus(&models.Payment{},
		[]string{"pending", "confirmed", "overdue", "cancelled", "failed"})

	var revenue float64
	db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusConfirmed).
		Select("COALESCE(SUM(amount), 0)").Scan(&revenue)
	stats["confirmed_revenue"] = revenue

	c.JSON(http.StatusOK, stats)
}

// GetLeaseEvents returns the most recent lease audit events
func (h *AdminHandler) GetLeaseEvents(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.auditService.Recent(limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// TriggerScheduler runs the daily billing cycle immediately
func (h *AdminHandler) TriggerScheduler(c *gin.Context) {
	log.Println("[Admin] manual scheduler trigger requested")

	if err := h.scheduler.RunNow(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Daily billing cycle completed"})
}

// RunCleanup executes a cleanup pass. dry_run=true previews without deleting.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	cfg := h.cleanupConfig
	if c.Query("dry_run") == "true" {
		cfg.DryRun = true
	}

	result, err := h.cleanupService.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCleanupStats returns deletion log statistics
func (h *AdminHandler) GetCleanupStats(c *gin.Context) {
	stats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReindexSearch rebuilds the search index from the properties table
func (h *AdminHandler) ReindexSearch(c *gin.Context) {
	if h.searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	townshipNames := make(map[string]string)
	townships, err := h.gdb.ListTownships()
	if err != nil {
		writeError(c, err)
		return
	}
	for _, t := range townships {
		townshipNames[t.ID] = t.Name
	}

	var properties []models.Property
	if err := h.gdb.DB().Find(&properties).Error; err != nil {
		writeError(c, err)
		return
	}

	docs := make([]search.PropertyDoc, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		docs = append(docs, search.NewPropertyDoc(p, townshipNames[p.TownshipID]))
	}

	if err := h.searchClient.IndexProperties(docs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Admin] reindexed %d properties", len(docs))
	c.JSON(http.StatusOK, gin.H{"indexed": len(docs)})
}

// GetRateLimitStats returns current rate limiter counters
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.rateLimiter.GetStats())
}

// GetGatewayStatus reports the payment gateway circuit breaker state
func (h *AdminHandler) GetGatewayStatus(c *gin.Context) {
	isOpen, failures, total := h.gateway.Breaker().GetStatus()
	c.JSON(http.StatusOK, gin.H{
		"enabled":              h.gateway.Enabled(),
		"breaker_open":         isOpen,
		"consecutive_failures": failures,
		"total_failures":       total,
	})
}

// GetWorkerStats reports the payment verification worker's backlog
func (h *AdminHandler) GetWorkerStats(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification worker not running"})
		return
	}
	c.JSON(http.StatusOK, h.worker.Stats())
}
