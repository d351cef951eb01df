package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Tickets handlers

// GetAvailability - GET /api/tickets/:ticketTypeId/availability
// Remaining stock of a ticket type. Known is false when the figures are
// the assumed fallback served during a database outage.
func (h *Handlers) GetAvailability(c *gin.Context) {
	ticketTypeID, err := strconv.ParseInt(c.Param("ticketTypeId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket type id"})
		return
	}

	response, err := h.services.Tickets.GetAvailability(c.Request.Context(), ticketTypeID)
	if err != nil {
		slog.Error("Failed to get availability", "error", err, "ticket_type_id", ticketTypeID)
		respondError(c, err, "Failed to get availability")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuota - GET /api/event/quota/:ticketTypeId
// The caller's per-user quota record and selection state for a ticket type.
func (h *Handlers) GetQuota(c *gin.Context) {
	ticketTypeID, err := strconv.ParseInt(c.Param("ticketTypeId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket type id"})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Tickets.GetQuota(c.Request.Context(), ticketTypeID, uid)
	if err != nil {
		slog.Error("Failed to get quota", "error", err, "ticket_type_id", ticketTypeID)
		respondError(c, err, "Failed to get quota")
		return
	}

	c.JSON(http.StatusOK, response)
}
