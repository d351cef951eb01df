package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"tiketin/internal/models"

	"github.com/gin-gonic/gin"
)

// Purchases handlers

// CreateSinglePurchase - POST /api/user/event
// Book tickets for one schedule. Requested quantities above the cap are
// clamped and reported in the warning field.
func (h *Handlers) CreateSinglePurchase(c *gin.Context) {
	var req models.CreateSinglePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Purchases.CreateSingle(c.Request.Context(), uid, &req)
	if err != nil {
		slog.Error("Failed to create purchase", "error", err, "user_id", uid)
		respondError(c, err, "Failed to create purchase")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// CreateRecurringPurchase - POST /api/user/event/recurring
// Book one ticket per schedule across the full schedule of an event.
func (h *Handlers) CreateRecurringPurchase(c *gin.Context) {
	var req models.CreateRecurringPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Purchases.CreateRecurring(c.Request.Context(), uid, &req)
	if err != nil {
		slog.Error("Failed to create recurring purchase", "error", err, "user_id", uid)
		respondError(c, err, "Failed to create purchase")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListPurchases - GET /api/user/event
// The caller's purchases, newest first, with the frozen discount breakdown.
func (h *Handlers) ListPurchases(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Purchases.List(c.Request.Context(), uid)
	if err != nil {
		slog.Error("Failed to list purchases", "error", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list purchases"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// CancelPurchase - DELETE /api/user/event/:purchaseId
// Cancel a purchase and return its stock.
func (h *Handlers) CancelPurchase(c *gin.Context) {
	purchaseID, err := strconv.ParseInt(c.Param("purchaseId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.services.Purchases.Cancel(c.Request.Context(), uid, purchaseID); err != nil {
		slog.Error("Failed to cancel purchase", "error", err, "purchase_id", purchaseID)
		respondError(c, err, "Failed to cancel purchase")
		return
	}

	c.Status(http.StatusOK)
}
