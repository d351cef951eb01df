package models

import "time"

// AvailabilityResponse - remaining stock for one ticket type.
// Known is false when the figures are the static-total fallback rather
// than a live count.
type AvailabilityResponse struct {
	TicketTypeID  int64 `json:"ticket_type_id"`
	Remaining     int   `json:"remaining"`
	Sold          int   `json:"sold"`
	TotalQuantity int   `json:"totalQuantity"`
	Known         bool  `json:"known"`
}

// QuotaResponse - per-user quota record for one ticket type
type QuotaResponse struct {
	TicketTypeID     int64      `json:"ticket_type_id"`
	MaxPerUser       int        `json:"maxPerUser"`
	ConfirmedByUser  int        `json:"confirmedByUser"`
	PendingByUser    int        `json:"pendingByUser"`
	RemainingForUser int        `json:"remainingForUser"`
	EarlyDay         *time.Time `json:"earlyDay,omitempty"`
	State            string     `json:"state"`
}

// CreateEventRequest - event creation request
type CreateEventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type" binding:"required"`
	Venue       string  `json:"venue" binding:"required"`
	Currency    string  `json:"currency,omitempty"`
}

// CreateEventResponse - created event identifier
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// ListEventsResponseItem - one event in the browse listing
type ListEventsResponseItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Venue    string `json:"venue"`
	Currency string `json:"currency"`
}

// ListEventsResponse - event listing
type ListEventsResponse []ListEventsResponseItem

// TicketTypeView - ticket type with its configured rates, as shown on a
// schedule listing
type TicketTypeView struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	BasePrice     int64      `json:"base_price"`
	EarlyBirdRate float64    `json:"early_bird_rate"`
	ComboRate     float64    `json:"combo_rate"`
	EarlyDay      *time.Time `json:"early_day,omitempty"`
	TotalQuantity int        `json:"total_quantity"`
}

// ScheduleView - schedule with expiry computed at read time
type ScheduleView struct {
	ID          int64            `json:"id"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Expired     bool             `json:"expired"`
	TicketTypes []TicketTypeView `json:"ticket_types"`
}

// EventSchedulesResponse - schedules of one event with full-schedule
// purchase eligibility
type EventSchedulesResponse struct {
	EventID              int64          `json:"event_id"`
	Schedules            []ScheduleView `json:"schedules"`
	FullScheduleEligible bool           `json:"full_schedule_eligible"`
}

// AddOnSelection - one add-on pick inside a purchase request
type AddOnSelection struct {
	AddOnID  int64 `json:"add_on_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// CreateSinglePurchaseRequest - single-ticket booking request
type CreateSinglePurchaseRequest struct {
	ScheduleID   int64            `json:"schedule_id" binding:"required"`
	TicketTypeID int64            `json:"ticket_type_id" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required,min=1"`
	AddOns       []AddOnSelection `json:"add_ons,omitempty"`
}

// RecurringSelectionRequest - one ticket pick per schedule in a
// full-schedule booking, quantity is always one
type RecurringSelectionRequest struct {
	ScheduleID   int64 `json:"schedule_id" binding:"required"`
	TicketTypeID int64 `json:"ticket_type_id" binding:"required"`
}

// CreateRecurringPurchaseRequest - full-schedule booking request
type CreateRecurringPurchaseRequest struct {
	EventID    int64                       `json:"event_id" binding:"required"`
	Selections []RecurringSelectionRequest `json:"selections" binding:"required,min=1"`
	AddOns     []AddOnSelection            `json:"add_ons,omitempty"`
}

// PurchaseData - identifier payload of a created purchase
type PurchaseData struct {
	ID int64 `json:"id"`
}

// PurchaseResponse - booking endpoints envelope. Warning carries the
// clamp message when a requested quantity was reduced.
type PurchaseResponse struct {
	Success bool         `json:"success"`
	Data    PurchaseData `json:"data"`
	Warning string       `json:"warning,omitempty"`
}

// ListPurchasesResponseItem - one purchase in the user's list
type ListPurchasesResponseItem struct {
	ID            int64          `json:"id"`
	EventID       int64          `json:"event_id"`
	Kind          string         `json:"kind"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	OriginalTotal int64          `json:"original_total"`
	DiscountTotal int64          `json:"discount_total"`
	FinalTotal    int64          `json:"final_total"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []PurchaseItem `json:"items,omitempty"`
}

// CreatePaymentRequest - payment initiation request
type CreatePaymentRequest struct {
	PurchaseID int64 `json:"purchase_id" binding:"required"`
}

// CreatePaymentData - payment gateway redirect target
type CreatePaymentData struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreatePaymentResponse - payment creation envelope. The capitalized keys
// are the wire contract inherited from the original backend.
type CreatePaymentResponse struct {
	Success bool              `json:"Success"`
	Data    CreatePaymentData `json:"Data"`
}

// PaymentNotificationPayload - webhook payload from the payment gateway
type PaymentNotificationPayload struct {
	PaymentID string                 `json:"paymentId"`
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// SelectionSession - resumable selection state, stored server-side with a
// TTL instead of in ambient browser storage
type SelectionSession struct {
	EventID      int64     `json:"event_id"`
	ScheduleID   int64     `json:"schedule_id"`
	TicketTypeID int64     `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	UpdatedAt    time.Time `json:"updated_at"`
}
