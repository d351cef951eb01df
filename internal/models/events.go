package models

import "time"

// NATS Event Types
const (
	EventPurchaseCreated   = "purchase.created"
	EventPurchaseCancelled = "purchase.cancelled"
	EventPurchaseExpired   = "purchase.expired"
	EventPaymentInitiated  = "payment.initiated"
	EventPaymentCompleted  = "payment.completed"
	EventPaymentFailed     = "payment.failed"
)

// PurchaseCreatedEvent represents a purchase creation event
type PurchaseCreatedEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	EventID    int64     `json:"event_id"`
	UserID     int64     `json:"user_id"`
	Kind       string    `json:"kind"`
	FinalTotal int64     `json:"final_total"`
	Timestamp  time.Time `json:"timestamp"`
}

// PurchaseCancelledEvent represents a purchase cancellation event
type PurchaseCancelledEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	EventID    int64     `json:"event_id"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// PurchaseExpiredEvent represents a pending purchase that outlived its
// payment window
type PurchaseExpiredEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	EventID    int64     `json:"event_id"`
	UserID     int64     `json:"user_id"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentInitiatedEvent represents a payment initiation event
type PaymentInitiatedEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	EventID    int64     `json:"event_id"`
	Amount     int64     `json:"amount"`
	PaymentID  string    `json:"payment_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentCompletedEvent represents a successful payment event
type PaymentCompletedEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	PaymentID  string    `json:"payment_id"`
	OrderID    string    `json:"order_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentFailedEvent represents a failed payment event
type PaymentFailedEvent struct {
	PurchaseID int64     `json:"purchase_id"`
	PaymentID  string    `json:"payment_id"`
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}
