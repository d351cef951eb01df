package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"tiketin/internal/models"

	"github.com/gin-gonic/gin"
)

// Events handlers

// CreateEvent - POST /api/events
// Create an event. Schedules and ticket types are attached separately.
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Venue:       req.Venue,
		Currency:    req.Currency,
	}

	if err := h.services.Events.Create(c.Request.Context(), event); err != nil {
		slog.Error("Failed to create event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, models.CreateEventResponse{ID: event.ID})
}

// ListEvents - GET /api/events
// Browse events, optionally filtered by text query and date.
func (h *Handlers) ListEvents(c *gin.Context) {
	query := c.Query("query")
	date := c.Query("date")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}

	if pageSize < 1 || pageSize > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 20"})
		return
	}

	response, err := h.services.Events.List(c.Request.Context(), query, date, page, pageSize)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEventSchedules - GET /api/events/:eventId/schedules
// Full schedule of an event with per-schedule ticket types and expiry, plus
// whether a full-schedule purchase is still open.
func (h *Handlers) GetEventSchedules(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	response, err := h.services.Events.GetSchedules(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err, "Failed to get schedules")
		return
	}

	c.JSON(http.StatusOK, response)
}
