package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/document"
	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/lifecycle"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
	"township-rental-portal/internal/payments"
)

// LeaseHandler handles lease lifecycle endpoints
type LeaseHandler struct {
	gdb    *database.GormDB
	audit  *audit.Service
	notify *notify.Service
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(gdb *database.GormDB, auditSvc *audit.Service, notifySvc *notify.Service) *LeaseHandler {
	return &LeaseHandler{gdb: gdb, audit: auditSvc, notify: notifySvc}
}

type createLeaseRequest struct {
	ApplicationID   string        `json:"application_id" binding:"required"`
	StartDate       string        `json:"start_date" binding:"required"`
	DurationMonths  int           `json:"duration_months" binding:"required"`
	MonthlyRent     float64       `json:"monthly_rent" binding:"required"`
	DepositRequired *bool         `json:"deposit_required"`
	DepositAmount   float64       `json:"deposit_amount"`
	RentDueDay      int           `json:"rent_due_day"`
	Extras          []lease.Extra `json:"extras"`
}

// Create handles POST /api/leases. Only the landlord of an approved
// application can create a lease from it.
func (h *LeaseHandler) Create(c *gin.Context) {
	landlordID := actorID(c)
	if landlordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req createLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.Application
	if err := h.gdb.DB().Where("id = ?", req.ApplicationID).First(&application).Error; err != nil {
		writeError(c, err)
		return
	}
	if application.LandlordID != landlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the landlord can create a lease from this application"})
		return
	}
	if application.Status != models.ApplicationStatusApproved {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "application must be approved before a lease can be created"})
		return
	}

	var existing int64
	h.gdb.DB().Model(&models.Lease{}).
		Where("application_id = ? AND status NOT IN ?", application.ID,
			[]models.LeaseStatus{models.LeaseStatusCancelled}).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "a lease already exists for this application"})
		return
	}

	endDate, err := lease.EndDate(req.StartDate, req.DurationMonths)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	depositRequired := true
	if req.DepositRequired != nil {
		depositRequired = *req.DepositRequired
	}
	depositAmount := req.DepositAmount
	if !depositRequired {
		depositAmount = 0
	}
	rentDueDay := req.RentDueDay
	if rentDueDay < 1 || rentDueDay > 31 {
		rentDueDay = 1
	}

	cfg := &lease.Config{
		Version:         lease.CurrentVersion,
		DurationMonths:  req.DurationMonths,
		RentDueDay:      rentDueDay,
		Extras:          req.Extras,
		DepositRequired: depositRequired,
		MonthlyTotal:    lease.MonthlyTotal(req.MonthlyRent, req.Extras),
		MoveInTotal:     lease.MoveInTotal(req.MonthlyRent, depositAmount, req.Extras),
	}

	l := &models.Lease{
		ID:            uuid.NewString(),
		LandlordID:    landlordID,
		TenantID:      application.TenantID,
		PropertyID:    application.PropertyID,
		ApplicationID: application.ID,
		StartDate:     req.StartDate,
		EndDate:       endDate,
		MonthlyRent:   req.MonthlyRent,
		DepositAmount: depositAmount,
		Status:        models.LeaseStatusPending,
		LeaseTerms:    cfg.Serialize(),
	}

	if err := h.gdb.DB().Create(l).Error; err != nil {
		writeError(c, err)
		return
	}

	h.audit.RecordTransition(nil, l.ID, models.LeaseEventCreated, landlordID, "", string(l.Status))

	landlordName := landlordID
	if profile, perr := h.gdb.GetProfile(landlordID); perr == nil {
		landlordName = profile.FullName()
	}
	title := l.PropertyID
	if property, perr := h.gdb.GetPropertyByID(l.PropertyID); perr == nil {
		title = property.Title
	}
	h.notify.LeaseCreated(l.TenantID, landlordName, title)

	c.JSON(http.StatusCreated, leaseResponse(l, cfg))
}

// leaseResponse attaches the parsed config so clients never have to decode
// the lease_terms blob themselves.
func leaseResponse(l *models.Lease, cfg *lease.Config) gin.H {
	return gin.H{"lease": l, "terms": cfg}
}

// List handles GET /api/leases
func (h *LeaseHandler) List(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	q := h.gdb.DB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var leases []models.Lease
	if err := q.Order("created_at DESC").Find(&leases).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leases": leases, "count": len(leases)})
}

// loadLease fetches a lease and verifies userID is a party to it
func (h *LeaseHandler) loadLease(c *gin.Context, userID string) (*models.Lease, *lease.Config, bool) {
	var l models.Lease
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&l).Error; err != nil {
		writeError(c, err)
		return nil, nil, false
	}

	if userID != l.TenantID && userID != l.LandlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this lease"})
		return nil, nil, false
	}

	cfg := lease.Migrate(lease.ParseConfig(l.LeaseTerms), &l)
	return &l, cfg, true
}

// Get handles GET /api/leases/:id
func (h *LeaseHandler) Get(c *gin.Context) {
	l, cfg, ok := h.loadLease(c, actorID(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, leaseResponse(l, cfg))
}

// Sign handles POST /api/leases/:id/sign
func (h *LeaseHandler) Sign(c *gin.Context) {
	userID := actorID(c)
	l, cfg, ok := h.loadLease(c, userID)
	if !ok {
		return
	}
	if cfg == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "lease has no terms to sign"})
		return
	}

	actor := lifecycle.ActorTenant
	eventType := models.LeaseEventTenantSigned
	if userID == l.LandlordID {
		actor = lifecycle.ActorLandlord
		eventType = models.LeaseEventLandlordSigned
	}

	oldStatus := l.Status
	if err := lifecycle.Sign(l, cfg, actor, time.Now()); err != nil {
		writeError(c, err)
		return
	}

	err := h.gdb.DB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"lease_terms": cfg.Serialize(),
			"is_signed":   l.IsSigned,
			"signed_at":   l.SignedAt,
			"status":      l.Status,
		}
		if err := tx.Model(&models.Lease{}).Where("id = ?", l.ID).Updates(updates).Error; err != nil {
			return err
		}

		h.audit.RecordTransition(tx, l.ID, eventType, userID, string(oldStatus), string(l.Status))
		if l.IsSigned {
			h.audit.RecordTransition(tx, l.ID, models.LeaseEventFullySigned, userID, string(oldStatus), string(l.Status))
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if l.IsSigned {
		title := l.PropertyID
		if property, perr := h.gdb.GetPropertyByID(l.PropertyID); perr == nil {
			title = property.Title
		}
		h.notify.LeaseSigned(l.TenantID, title)
		h.notify.LeaseSigned(l.LandlordID, title)
	}

	c.JSON(http.StatusOK, leaseResponse(l, cfg))
}

// Cancel handles POST /api/leases/:id/cancel. Either party may cancel an
// active lease; short notice creates a pending cancel penalty payment for
// the tenant.
func (h *LeaseHandler) Cancel(c *gin.Context) {
	userID := actorID(c)
	l, cfg, ok := h.loadLease(c, userID)
	if !ok {
		return
	}

	actor := lifecycle.ActorTenant
	if userID == l.LandlordID {
		actor = lifecycle.ActorLandlord
	}

	oldStatus := l.Status
	now := time.Now()
	cancellation, err := lifecycle.RequestCancellation(l, cfg, actor, now)
	if err != nil {
		writeError(c, err)
		return
	}

	var penalty *models.Payment
	if cancellation.PenaltyDue {
		quote, qerr := payments.Resolve(l, cfg, models.PaymentTypeCancelPenalty, l.TenantID)
		if qerr != nil {
			writeError(c, qerr)
			return
		}
		breakdown, _ := json.Marshal(quote.Breakdown)
		penalty = &models.Payment{
			ID:                   uuid.NewString(),
			LeaseID:              l.ID,
			TenantID:             l.TenantID,
			LandlordID:           l.LandlordID,
			PropertyID:           l.PropertyID,
			PaymentType:          models.PaymentTypeCancelPenalty,
			Status:               models.PaymentStatusPending,
			Amount:               quote.Amount,
			DueDate:              cancellation.EffectiveDate.Format("2006-01-02"),
			TransactionReference: payments.TransactionReference(models.PaymentTypeCancelPenalty, l.ID, now),
			Breakdown:            string(breakdown),
		}
	}

	err = h.gdb.DB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":    l.Status,
			"is_active": l.IsActive,
			"end_date":  l.EndDate,
		}
		if cfg != nil {
			updates["lease_terms"] = cfg.Serialize()
		}
		if err := tx.Model(&models.Lease{}).Where("id = ?", l.ID).Updates(updates).Error; err != nil {
			return err
		}

		if penalty != nil {
			if err := tx.Create(penalty).Error; err != nil {
				return err
			}
		}

		h.audit.RecordTransition(tx, l.ID, models.LeaseEventCancellationRequested, userID, string(oldStatus), string(l.Status))
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	title := l.PropertyID
	if property, perr := h.gdb.GetPropertyByID(l.PropertyID); perr == nil {
		title = property.Title
	}
	effective := cancellation.EffectiveDate.Format("2006-01-02")
	h.notify.LeaseCancelled(l.TenantID, title, effective)
	h.notify.LeaseCancelled(l.LandlordID, title, effective)

	resp := gin.H{
		"lease":          l,
		"terms":          cfg,
		"effective_date": effective,
		"penalty_due":    cancellation.PenaltyDue,
	}
	if penalty != nil {
		resp["penalty_payment"] = penalty
	}
	c.JSON(http.StatusOK, resp)
}

// Document handles GET /api/leases/:id/document, serving the printable
// lease agreement.
func (h *LeaseHandler) Document(c *gin.Context) {
	userID := actorID(c)
	l, cfg, ok := h.loadLease(c, userID)
	if !ok {
		return
	}

	landlord, err := h.gdb.GetProfile(l.LandlordID)
	if err != nil {
		writeError(c, err)
		return
	}
	tenant, err := h.gdb.GetProfile(l.TenantID)
	if err != nil {
		writeError(c, err)
		return
	}
	property, err := h.gdb.GetPropertyByID(l.PropertyID)
	if err != nil {
		writeError(c, err)
		return
	}

	html, err := document.RenderLeaseAgreement(document.AgreementData{
		Lease:    l,
		Config:   cfg,
		Landlord: landlord,
		Tenant:   tenant,
		Property: property,
		Now:      time.Now(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// History handles GET /api/leases/:id/history
func (h *LeaseHandler) History(c *gin.Context) {
	userID := actorID(c)
	l, _, ok := h.loadLease(c, userID)
	if !ok {
		return
	}

	events, err := h.audit.LeaseHistory(l.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
