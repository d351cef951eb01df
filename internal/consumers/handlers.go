package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	apperrors "tiketin/internal/errors"
	"tiketin/internal/models"
	"tiketin/internal/service"

	"github.com/nats-io/stan.go"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

func (h *Handlers) HandlePurchaseCreated(m *stan.Msg) {
	var event models.PurchaseCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal purchase created event", "error", err)
		return
	}

	slog.Info("Processing purchase created event",
		"purchase_id", event.PurchaseID,
		"kind", event.Kind,
		"final_total", event.FinalTotal)

	m.Ack()
}

func (h *Handlers) HandlePurchaseCancelled(m *stan.Msg) {
	var event models.PurchaseCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal purchase cancelled event", "error", err)
		return
	}

	slog.Info("Processing purchase cancelled event",
		"purchase_id", event.PurchaseID,
		"reason", event.Reason)

	m.Ack()
}

func (h *Handlers) HandlePurchaseExpired(m *stan.Msg) {
	var event models.PurchaseExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal purchase expired event", "error", err)
		return
	}

	slog.Info("Processing purchase expired event",
		"purchase_id", event.PurchaseID,
		"user_id", event.UserID)

	m.Ack()
}

func (h *Handlers) HandlePaymentInitiated(m *stan.Msg) {
	var event models.PaymentInitiatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment initiated event", "error", err)
		return
	}

	slog.Info("Processing payment initiated event",
		"purchase_id", event.PurchaseID,
		"payment_id", event.PaymentID,
		"amount", event.Amount)

	m.Ack()
}

// HandlePaymentCompleted settles the purchase. The API webhook usually got
// there first; settlement is idempotent, so replays are harmless.
func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		return
	}

	slog.Info("Processing payment completed event",
		"purchase_id", event.PurchaseID,
		"payment_id", event.PaymentID)

	if event.PaymentID != "" {
		err := h.services.Purchases.ConfirmPayment(context.Background(), event.PaymentID)
		// Unknown payment IDs are acked, redelivery won't make them known
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			slog.Error("Failed to confirm payment from event",
				"error", err,
				"payment_id", event.PaymentID)
			return
		}
	}

	m.Ack()
}

func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		return
	}

	slog.Info("Processing payment failed event",
		"purchase_id", event.PurchaseID,
		"payment_id", event.PaymentID,
		"reason", event.Reason)

	if event.PaymentID != "" {
		err := h.services.Purchases.FailPayment(context.Background(), event.PaymentID, event.Reason)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			slog.Error("Failed to release purchase from event",
				"error", err,
				"payment_id", event.PaymentID)
			return
		}
	}

	m.Ack()
}
