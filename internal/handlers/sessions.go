package handlers

import (
	"log/slog"
	"net/http"

	"tiketin/internal/models"

	"github.com/gin-gonic/gin"
)

// Selection session handlers. The in-progress selection lives server-side
// with a TTL so an interrupted flow can resume on any device.

// SaveSelection - PUT /api/user/session/selection
func (h *Handlers) SaveSelection(c *gin.Context) {
	if h.valkeyClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
		return
	}

	var session models.SelectionSession
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.valkeyClient.SaveSelectionSession(c.Request.Context(), uid, &session); err != nil {
		slog.Error("Failed to save selection session", "error", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}

	c.Status(http.StatusOK)
}

// GetSelection - GET /api/user/session/selection
// Returns 204 when no selection is stored or it has expired.
func (h *Handlers) GetSelection(c *gin.Context) {
	if h.valkeyClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.valkeyClient.GetSelectionSession(c.Request.Context(), uid)
	if err != nil {
		slog.Error("Failed to get selection session", "error", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get selection"})
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, session)
}
