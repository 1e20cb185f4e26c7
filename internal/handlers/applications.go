package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"township-rental-portal/internal/database"
	"township-rental-portal/internal/lifecycle"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
)

// ApplicationHandler handles rental application endpoints
type ApplicationHandler struct {
	gdb    *database.GormDB
	notify *notify.Service
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(gdb *database.GormDB, notifySvc *notify.Service) *ApplicationHandler {
	return &ApplicationHandler{gdb: gdb, notify: notifySvc}
}

type createApplicationRequest struct {
	PropertyID             string  `json:"property_id" binding:"required"`
	ProposedMoveInDate     string  `json:"proposed_move_in_date"`
	LeaseDurationRequested int     `json:"lease_duration_requested"`
	MonthlyIncome          float64 `json:"monthly_income"`
	EmploymentStatus       string  `json:"employment_status"`
	Message                string  `json:"message"`
}

// Create handles POST /api/applications. Submission requires a viewing for
// the property that the landlord has confirmed; the viewing is then marked
// application_submitted.
func (h *ApplicationHandler) Create(c *gin.Context) {
	tenantID := actorID(c)
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property, err := h.gdb.GetPropertyByID(req.PropertyID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !property.IsAvailable() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "property is no longer available"})
		return
	}
	if property.LandlordID == tenantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "landlords cannot apply for their own property"})
		return
	}

	viewing, err := findViewingForPair(h.gdb.DB(), tenantID, req.PropertyID)
	if err != nil {
		writeError(c, err)
		return
	}
	if gate := lifecycle.CanApply(viewing); !gate.Allowed {
		writeBlocked(c, gate)
		return
	}

	application := &models.Application{
		ID:                     uuid.NewString(),
		TenantID:               tenantID,
		PropertyID:             property.ID,
		LandlordID:             property.LandlordID,
		Status:                 models.ApplicationStatusPending,
		ProposedMoveInDate:     req.ProposedMoveInDate,
		LeaseDurationRequested: req.LeaseDurationRequested,
		MonthlyIncome:          req.MonthlyIncome,
		EmploymentStatus:       req.EmploymentStatus,
		Message:                req.Message,
	}

	if err := h.gdb.DB().Create(application).Error; err != nil {
		if isDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "you have already applied for this property"})
			return
		}
		writeError(c, err)
		return
	}

	if next, terr := lifecycle.NextViewingStatus(viewing.Status, lifecycle.ViewingAttachApplication, lifecycle.ActorTenant); terr == nil {
		h.gdb.DB().Model(&models.ViewingRequest{}).
			Where("id = ? AND status = ?", viewing.ID, viewing.Status).
			Update("status", next)
	}

	tenantName := tenantID
	if profile, perr := h.gdb.GetProfile(tenantID); perr == nil {
		tenantName = profile.FullName()
	}
	h.notify.ApplicationReceived(property.LandlordID, tenantName, property.Title, application.ID)

	c.JSON(http.StatusCreated, application)
}

// List handles GET /api/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	q := h.gdb.DB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if propertyID := c.Query("property_id"); propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}

	var applications []models.Application
	if err := q.Order("created_at DESC").Find(&applications).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
}

// Get handles GET /api/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID := actorID(c)

	var application models.Application
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&application).Error; err != nil {
		writeError(c, err)
		return
	}

	if userID != application.TenantID && userID != application.LandlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this application"})
		return
	}

	c.JSON(http.StatusOK, application)
}

type decideApplicationRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// Decide handles PUT /api/applications/:id/:action for approve/reject
func (h *ApplicationHandler) Decide(c *gin.Context) {
	userID := actorID(c)
	event := lifecycle.ApplicationEvent(c.Param("action"))

	var application models.Application
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&application).Error; err != nil {
		writeError(c, err)
		return
	}

	if userID != application.LandlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the landlord can decide an application"})
		return
	}

	next, err := lifecycle.NextApplicationStatus(application.Status, event, lifecycle.ActorLandlord)
	if err != nil {
		writeError(c, err)
		return
	}

	var req decideApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	updates := map[string]interface{}{"status": next}
	if event == lifecycle.ApplicationReject && req.RejectionReason != "" {
		updates["rejection_reason"] = req.RejectionReason
	}

	result := h.gdb.DB().Model(&models.Application{}).
		Where("id = ? AND status = ?", application.ID, application.Status).
		Updates(updates)
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "application was modified concurrently"})
		return
	}

	property, perr := h.gdb.GetPropertyByID(application.PropertyID)
	title := application.PropertyID
	if perr == nil {
		title = property.Title
	}

	switch event {
	case lifecycle.ApplicationApprove:
		h.notify.ApplicationApproved(application.TenantID, title, application.ID)
	case lifecycle.ApplicationReject:
		h.notify.ApplicationRejected(application.TenantID, title, application.ID)
	}

	application.Status = next
	if reason, ok := updates["rejection_reason"].(string); ok {
		application.RejectionReason = reason
	}
	c.JSON(http.StatusOK, application)
}
