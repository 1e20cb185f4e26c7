package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"township-rental-portal/internal/database"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	gdb    *database.GormDB
	notify *notify.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(gdb *database.GormDB, notifySvc *notify.Service) *NotificationHandler {
	return &NotificationHandler{gdb: gdb, notify: notifySvc}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := h.notify.ListForUser(userID, unreadOnly, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	var unreadCount int64
	h.gdb.DB().Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&unreadCount)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unreadCount,
	})
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	if err := h.notify.MarkRead(userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	updated, err := h.notify.MarkAllRead(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
