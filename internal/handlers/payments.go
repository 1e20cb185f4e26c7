package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"township-rental-portal/internal/database"
	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/payments"
)

// PaymentHandler handles payment quoting, initiation and settlement
type PaymentHandler struct {
	gdb        *database.GormDB
	gateway    *payments.Gateway
	settlement *payments.Settlement
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gdb *database.GormDB, gateway *payments.Gateway, settlement *payments.Settlement) *PaymentHandler {
	return &PaymentHandler{gdb: gdb, gateway: gateway, settlement: settlement}
}

// loadLeaseForPayment fetches a lease plus its migrated config
func (h *PaymentHandler) loadLeaseForPayment(c *gin.Context, leaseID string) (*models.Lease, *lease.Config, bool) {
	var l models.Lease
	if err := h.gdb.DB().Where("id = ?", leaseID).First(&l).Error; err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	cfg := lease.Migrate(lease.ParseConfig(l.LeaseTerms), &l)
	return &l, cfg, true
}

// Quote handles GET /api/payments/quote. It resolves the amount for a
// payment type without creating anything.
func (h *PaymentHandler) Quote(c *gin.Context) {
	userID := actorID(c)
	leaseID := c.Query("lease_id")
	paymentType := models.PaymentType(c.Query("payment_type"))
	if leaseID == "" || paymentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lease_id and payment_type are required"})
		return
	}

	l, cfg, ok := h.loadLeaseForPayment(c, leaseID)
	if !ok {
		return
	}

	quote, err := payments.Resolve(l, cfg, paymentType, userID)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lease_id":     l.ID,
		"payment_type": quote.PaymentType,
		"amount":       quote.Amount,
		"breakdown":    quote.Breakdown,
		"ozow_enabled": h.gateway.Enabled(),
	})
}

type initiatePaymentRequest struct {
	LeaseID     string             `json:"lease_id" binding:"required"`
	PaymentType models.PaymentType `json:"payment_type" binding:"required"`
}

// Initiate handles POST /api/payments/initiate. The amount is resolved
// server side, a pending payment row is created, and the caller gets the
// hosted-checkout redirect.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, cfg, ok := h.loadLeaseForPayment(c, req.LeaseID)
	if !ok {
		return
	}

	quote, err := payments.Resolve(l, cfg, req.PaymentType, userID)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	now := time.Now()
	breakdown, _ := json.Marshal(quote.Breakdown)
	nextVerify := now.Add(models.NextVerifyDelay(0))

	payment := &models.Payment{
		ID:                   uuid.NewString(),
		LeaseID:              l.ID,
		TenantID:             l.TenantID,
		LandlordID:           l.LandlordID,
		PropertyID:           l.PropertyID,
		PaymentType:          req.PaymentType,
		Status:               models.PaymentStatusPending,
		Amount:               quote.Amount,
		TransactionReference: payments.TransactionReference(req.PaymentType, l.ID, now),
		Breakdown:            string(breakdown),
		NextVerifyAt:         &nextVerify,
	}

	customerEmail := userID
	customerName := userID
	if profile, perr := h.gdb.GetProfile(userID); perr == nil {
		customerEmail = profile.Email
		customerName = profile.FullName()
	}
	title := l.PropertyID
	if property, perr := h.gdb.GetPropertyByID(l.PropertyID); perr == nil {
		title = property.Title
	}

	redirect, err := h.gateway.BuildRedirect(payment, quote, customerEmail, customerName, title)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	if err := h.gdb.DB().Create(payment).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment_id":      payment.ID,
		"transaction_ref": payment.TransactionReference,
		"amount":          payment.Amount,
		"breakdown":       quote.Breakdown,
		"ozow": gin.H{
			"url":     redirect.URL,
			"amount":  redirect.Amount,
			"is_test": redirect.IsTest,
		},
	})
}

// Webhook handles POST /api/payments/notify, the gateway's server-to-server
// settlement notification. The hash is verified before anything is trusted.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form payload"})
		return
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	if !h.gateway.VerifyWebhook(fields) {
		log.Printf("[Payments] webhook hash mismatch for ref %s", fields["TransactionReference"])
		c.JSON(http.StatusForbidden, gin.H{"error": "hash verification failed"})
		return
	}

	ref := fields["TransactionReference"]
	var payment models.Payment
	if err := h.gdb.DB().Where("transaction_reference = ?", ref).First(&payment).Error; err != nil {
		writeError(c, err)
		return
	}

	status, ok := payments.MapGatewayStatus(fields["Status"])
	if !ok {
		// Still in flight on the gateway side; the verification worker
		// will pick it up.
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}

	if err := h.settlement.Apply(payment.ID, status); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}

// History handles GET /api/payments
func (h *PaymentHandler) History(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	q := h.gdb.DB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)
	if leaseID := c.Query("lease_id"); leaseID != "" {
		q = q.Where("lease_id = ?", leaseID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if paymentType := c.Query("payment_type"); paymentType != "" {
		q = q.Where("payment_type = ?", paymentType)
	}

	var rows []models.Payment
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": rows, "count": len(rows)})
}

// Get handles GET /api/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	userID := actorID(c)

	var payment models.Payment
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&payment).Error; err != nil {
		writeError(c, err)
		return
	}

	if userID != payment.TenantID && userID != payment.LandlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this payment"})
		return
	}

	c.JSON(http.StatusOK, payment)
}

// writePaymentError maps resolver and gateway errors onto HTTP codes
func (h *PaymentHandler) writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payments.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrUnknownType), errors.Is(err, payments.ErrNoDeposit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrGatewayDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "online payments are currently unavailable"})
	default:
		writeError(c, err)
	}
}
