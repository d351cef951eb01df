package handlers

import (
	"log/slog"
	"net/http"

	"tiketin/internal/models"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// CreatePayment - POST /api/payments/create
// Initiate a gateway payment for a pending purchase. The response keys are
// capitalized; that shape is the wire contract clients already depend on.
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	redirectURL, err := h.services.Purchases.CreatePayment(c.Request.Context(), uid, req.PurchaseID)
	if err != nil {
		slog.Error("Failed to create payment", "error", err, "purchase_id", req.PurchaseID)
		respondError(c, err, "Failed to create payment")
		return
	}

	c.JSON(http.StatusOK, models.CreatePaymentResponse{
		Success: true,
		Data:    models.CreatePaymentData{RedirectURL: redirectURL},
	})
}

// NotifyPaymentCompleted - GET /api/payments/success
// Gateway redirect target after a successful payment.
func (h *Handlers) NotifyPaymentCompleted(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentId is required"})
		return
	}

	if err := h.services.Purchases.ConfirmPayment(c.Request.Context(), paymentID); err != nil {
		slog.Error("Failed to confirm payment", "error", err, "payment_id", paymentID)
		respondError(c, err, "Failed to confirm payment")
		return
	}

	c.Status(http.StatusOK)
}

// NotifyPaymentFailed - GET /api/payments/fail
// Gateway redirect target after a failed payment.
func (h *Handlers) NotifyPaymentFailed(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentId is required"})
		return
	}

	if err := h.services.Purchases.FailPayment(c.Request.Context(), paymentID, "Payment failed"); err != nil {
		slog.Error("Failed to handle payment failure", "error", err, "payment_id", paymentID)
		respondError(c, err, "Failed to handle payment failure")
		return
	}

	c.Status(http.StatusOK)
}

// OnPaymentUpdates - POST /api/payments/notifications
// Webhook receiver for asynchronous gateway notifications.
func (h *Handlers) OnPaymentUpdates(c *gin.Context) {
	var notification models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Purchases.HandlePaymentNotification(c.Request.Context(), &notification); err != nil {
		slog.Error("Failed to handle payment notification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to handle notification"})
		return
	}

	c.Status(http.StatusOK)
}
