package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"township-rental-portal/internal/lifecycle"
)

// actorID resolves the acting user for a request. Authentication itself
// happens upstream; the gateway forwards the authenticated user id in the
// X-User-ID header.
func actorID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

// writeError maps domain errors to HTTP responses
func writeError(c *gin.Context, err error) {
	var transition *lifecycle.TransitionError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": transition.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// writeBlocked reports a failed precondition gate
func writeBlocked(c *gin.Context, gate lifecycle.Gate) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gate.Reason, "allowed": false})
}

// isDuplicateErr reports whether an insert hit a unique constraint
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver-specific duplicate messages (MySQL 1062, SQLite, Postgres).
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
