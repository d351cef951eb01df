package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLoggedIn time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// Event represents a bookable event (concert, workshop series, etc.)
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	Venue       string    `json:"venue" db:"venue"`
	Currency    string    `json:"currency" db:"currency"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Schedule is one occurrence of an event. Expiry is never persisted:
// a schedule is expired once its start time is in the past, recomputed
// at read time.
type Schedule struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
}

// Expired reports whether the schedule has already started.
func (s *Schedule) Expired(now time.Time) bool {
	return !now.Before(s.StartTime)
}

// TicketType belongs to a schedule and carries the pricing configuration.
// BasePrice is in minor units of the event currency. EarlyDay is the cutoff
// before which the early-bird rate applies; it is configured independently
// of the schedule start time.
type TicketType struct {
	ID            int64      `json:"id" db:"id"`
	ScheduleID    int64      `json:"schedule_id" db:"schedule_id"`
	Name          string     `json:"name" db:"name"`
	BasePrice     int64      `json:"base_price" db:"base_price"`
	EarlyBirdRate float64    `json:"early_bird_rate" db:"early_bird_rate"`
	ComboRate     float64    `json:"combo_rate" db:"combo_rate"`
	TotalQuantity int        `json:"total_quantity" db:"total_quantity"`
	Sold          int        `json:"sold" db:"sold"`
	MaxPerUser    int        `json:"max_per_user" db:"max_per_user"`
	EarlyDay      *time.Time `json:"early_day" db:"early_day"`
}

// TicketQuotaUsage tracks one user's confirmed and pending units of a
// ticket type. A missing row means zero usage.
type TicketQuotaUsage struct {
	TicketTypeID int64     `json:"ticket_type_id" db:"ticket_type_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Confirmed    int       `json:"confirmed" db:"confirmed"`
	Pending      int       `json:"pending" db:"pending"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AddOn is an optional extra sold with an event, never discounted.
type AddOn struct {
	ID        int64  `json:"id" db:"id"`
	EventID   int64  `json:"event_id" db:"event_id"`
	Name      string `json:"name" db:"name"`
	UnitPrice int64  `json:"unit_price" db:"unit_price"`
}

// Purchase kinds
const (
	PurchaseKindSingle    = "SINGLE"
	PurchaseKindRecurring = "RECURRING"
)

// Purchase statuses
const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusConfirmed = "CONFIRMED"
	PurchaseStatusCancelled = "CANCELLED"
	PurchaseStatusExpired   = "EXPIRED"
)

// Payment statuses
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusInitiated = "INITIATED"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusCancelled = "CANCELLED"
)

// Purchase represents a booking, either a single-ticket purchase or a
// full-schedule (recurring) purchase. Amounts are in minor units.
type Purchase struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	EventID       int64     `json:"event_id" db:"event_id"`
	Kind          string    `json:"kind" db:"kind"`
	Status        string    `json:"status" db:"status"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	OriginalTotal int64     `json:"original_total" db:"original_total"`
	DiscountTotal int64     `json:"discount_total" db:"discount_total"`
	FinalTotal    int64     `json:"final_total" db:"final_total"`
	PaymentID     *string   `json:"payment_id" db:"payment_id"`
	OrderID       *string   `json:"order_id" db:"order_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Items []PurchaseItem `json:"items,omitempty"` // Not from DB, filled separately
}

// PurchaseItem is one ticket line of a purchase, with the discount
// breakdown frozen at purchase time.
type PurchaseItem struct {
	ID                int64 `json:"id" db:"id"`
	PurchaseID        int64 `json:"purchase_id" db:"purchase_id"`
	ScheduleID        int64 `json:"schedule_id" db:"schedule_id"`
	TicketTypeID      int64 `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity          int   `json:"quantity" db:"quantity"`
	OriginalPrice     int64 `json:"original_price" db:"original_price"`
	EarlyBirdDiscount int64 `json:"early_bird_discount" db:"early_bird_discount"`
	ComboDiscount     int64 `json:"combo_discount" db:"combo_discount"`
	FinalPrice        int64 `json:"final_price" db:"final_price"`
}

// PurchaseAddOn is one add-on line of a purchase.
type PurchaseAddOn struct {
	ID         int64 `json:"id" db:"id"`
	PurchaseID int64 `json:"purchase_id" db:"purchase_id"`
	AddOnID    int64 `json:"add_on_id" db:"add_on_id"`
	Quantity   int   `json:"quantity" db:"quantity"`
	UnitPrice  int64 `json:"unit_price" db:"unit_price"`
}
