package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"township-rental-portal/internal/database"
	"township-rental-portal/internal/lifecycle"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
)

// ViewingHandler handles viewing request endpoints
type ViewingHandler struct {
	gdb    *database.GormDB
	notify *notify.Service
}

// NewViewingHandler creates a new viewing handler
func NewViewingHandler(gdb *database.GormDB, notifySvc *notify.Service) *ViewingHandler {
	return &ViewingHandler{gdb: gdb, notify: notifySvc}
}

type createViewingRequest struct {
	PropertyID    string `json:"property_id" binding:"required"`
	RequestedDate string `json:"requested_date" binding:"required"`
	RequestedTime string `json:"requested_time" binding:"required"`
}

// Create handles POST /api/viewings
func (h *ViewingHandler) Create(c *gin.Context) {
	tenantID := actorID(c)
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req createViewingRequest
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
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "property is not available for viewings"})
		return
	}
	if property.LandlordID == tenantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "landlords cannot request viewings of their own property"})
		return
	}

	viewing := &models.ViewingRequest{
		ID:            uuid.NewString(),
		PropertyID:    property.ID,
		TenantID:      tenantID,
		LandlordID:    property.LandlordID,
		Status:        models.ViewingStatusPending,
		RequestedDate: req.RequestedDate,
		RequestedTime: req.RequestedTime,
	}

	if err := h.gdb.DB().Create(viewing).Error; err != nil {
		if isDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "you already have a viewing request for this property"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, viewing)
}

// List handles GET /api/viewings
func (h *ViewingHandler) List(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	q := h.gdb.DB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var viewings []models.ViewingRequest
	if err := q.Order("created_at DESC").Find(&viewings).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"viewings": viewings, "count": len(viewings)})
}

type viewingActionRequest struct {
	ConfirmedDate    string `json:"confirmed_date"`
	ConfirmedTime    string `json:"confirmed_time"`
	LandlordResponse string `json:"landlord_response"`
}

// Transition handles PUT /api/viewings/:id/:action for
// confirm/decline/complete/cancel.
func (h *ViewingHandler) Transition(c *gin.Context) {
	userID := actorID(c)
	event := lifecycle.ViewingEvent(c.Param("action"))

	var viewing models.ViewingRequest
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&viewing).Error; err != nil {
		writeError(c, err)
		return
	}

	var actor lifecycle.Actor
	switch userID {
	case viewing.LandlordID:
		actor = lifecycle.ActorLandlord
	case viewing.TenantID:
		actor = lifecycle.ActorTenant
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this viewing request"})
		return
	}

	next, err := lifecycle.NextViewingStatus(viewing.Status, event, actor)
	if err != nil {
		writeError(c, err)
		return
	}

	var req viewingActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	updates := map[string]interface{}{"status": next}
	if event == lifecycle.ViewingConfirm {
		confirmedDate := req.ConfirmedDate
		confirmedTime := req.ConfirmedTime
		if confirmedDate == "" {
			confirmedDate = viewing.RequestedDate
		}
		if confirmedTime == "" {
			confirmedTime = viewing.RequestedTime
		}
		updates["confirmed_date"] = confirmedDate
		updates["confirmed_time"] = confirmedTime
	}
	if req.LandlordResponse != "" {
		updates["landlord_response"] = req.LandlordResponse
	}

	// Guard against a concurrent transition on the same row.
	result := h.gdb.DB().Model(&models.ViewingRequest{}).
		Where("id = ? AND status = ?", viewing.ID, viewing.Status).
		Updates(updates)
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "viewing request was modified concurrently"})
		return
	}

	property, perr := h.gdb.GetPropertyByID(viewing.PropertyID)
	title := viewing.PropertyID
	if perr == nil {
		title = property.Title
	}

	switch event {
	case lifecycle.ViewingConfirm:
		date, _ := updates["confirmed_date"].(string)
		h.notify.ViewingConfirmed(viewing.TenantID, title, date)
	case lifecycle.ViewingDecline:
		h.notify.ViewingDeclined(viewing.TenantID, title)
	}

	viewing.Status = next
	c.JSON(http.StatusOK, viewing)
}

// Get handles GET /api/viewings/:id
func (h *ViewingHandler) Get(c *gin.Context) {
	userID := actorID(c)

	var viewing models.ViewingRequest
	if err := h.gdb.DB().Where("id = ?", c.Param("id")).First(&viewing).Error; err != nil {
		writeError(c, err)
		return
	}

	if userID != viewing.TenantID && userID != viewing.LandlordID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this viewing request"})
		return
	}

	c.JSON(http.StatusOK, viewing)
}

// findViewingForPair loads the viewing request for a (tenant, property)
// pair, or nil when none exists.
func findViewingForPair(db *gorm.DB, tenantID, propertyID string) (*models.ViewingRequest, error) {
	var viewing models.ViewingRequest
	err := db.Where("tenant_id = ? AND property_id = ?", tenantID, propertyID).First(&viewing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &viewing, nil
}
