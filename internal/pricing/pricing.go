// Package pricing holds the discount and quota arithmetic for every purchase
// flow. Handlers and services never compute prices themselves - they build the
// inputs and call into this package, so the single and recurring flows cannot
// drift apart.
package pricing

import (
	"math"
	"time"
)

// TicketRates are the configured discount fractions of a ticket type.
// A missing or unknown ticket type is represented by the zero value,
// which yields no discount anywhere.
type TicketRates struct {
	EarlyBird float64
	Combo     float64
}

// Quota is the per-user purchase allowance for one ticket type.
// Exists is false when no quota record could be resolved; in that case
// the early-bird discount is never assumed.
type Quota struct {
	Exists     bool
	MaxPerUser int
	Confirmed  int
	Pending    int
	EarlyDay   *time.Time
}

// RemainingForUser returns how many more units the user may confirm,
// never negative.
func (q Quota) RemainingForUser() int {
	remaining := q.MaxPerUser - q.Confirmed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EarlyBirdApplicable reports whether the early-bird rate applies right now.
// It requires a resolved quota record with a configured early day that has
// not passed, and a strictly positive rate. Missing data disables the
// discount rather than assuming it.
func EarlyBirdApplicable(rates TicketRates, quota Quota, now time.Time) bool {
	if !quota.Exists || quota.EarlyDay == nil {
		return false
	}
	if rates.EarlyBird <= 0 {
		return false
	}
	return now.Before(*quota.EarlyDay)
}

// DiscountAmount returns the discount for one unit at the given rate,
// rounded half-up to a whole minor unit. Rates that are not strictly
// positive never produce a discount.
func DiscountAmount(price int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(price) * rate))
}

// AddOnLine is one add-on selection. Add-ons are never discounted.
type AddOnLine struct {
	UnitPrice int64
	Quantity  int
}

// AddOnsTotal sums add-on lines at face value.
func AddOnsTotal(addOns []AddOnLine) int64 {
	var total int64
	for _, a := range addOns {
		total += a.UnitPrice * int64(a.Quantity)
	}
	return total
}

// SingleQuote is the charge breakdown for a single-ticket purchase.
type SingleQuote struct {
	UnitPrice   int64
	TicketTotal int64
	AddOnsTotal int64
	GrandTotal  int64
	EarlyBird   bool
}

// QuoteSingle prices one ticket selection plus add-ons. Only the early-bird
// discount participates here; the combo rate is reserved for full-schedule
// purchases.
func QuoteSingle(price int64, quantity int, rates TicketRates, quota Quota, now time.Time, addOns []AddOnLine) SingleQuote {
	quote := SingleQuote{UnitPrice: price}

	if EarlyBirdApplicable(rates, quota, now) {
		quote.EarlyBird = true
		quote.UnitPrice = price - DiscountAmount(price, rates.EarlyBird)
	}

	quote.TicketTotal = quote.UnitPrice * int64(quantity)
	quote.AddOnsTotal = AddOnsTotal(addOns)
	quote.GrandTotal = quote.TicketTotal + quote.AddOnsTotal
	return quote
}

// RecurringSelection is one ticket pick for a full-schedule purchase,
// quantity fixed at one per schedule.
type RecurringSelection struct {
	ScheduleID   int64
	TicketTypeID int64
	Price        int64
	Rates        TicketRates
	Quota        Quota
}

// RecurringLine is the priced result for one schedule in a full-schedule
// purchase. FinalPrice is OriginalPrice minus both discount amounts, so the
// per-line breakdown always reconciles with the charged price.
type RecurringLine struct {
	ScheduleID        int64
	TicketTypeID      int64
	OriginalPrice     int64
	EarlyBirdDiscount int64
	ComboDiscount     int64
	FinalPrice        int64
}

// RecurringQuote aggregates a full-schedule purchase.
type RecurringQuote struct {
	Lines         []RecurringLine
	OriginalTotal int64
	AddOnsTotal   int64
	DiscountTotal int64
	FinalTotal    int64
}

// QuoteRecurring prices one ticket per schedule with early-bird and combo
// discounts stacking additively. The combo rate applies unconditionally when
// positive; the early-bird rate only inside its window. The combined discount
// is deliberately not capped below 100%: a configuration with rates summing
// past 1.0 will drive the final price to zero or below.
func QuoteRecurring(selections []RecurringSelection, now time.Time, addOns []AddOnLine) RecurringQuote {
	quote := RecurringQuote{
		Lines: make([]RecurringLine, 0, len(selections)),
	}

	for _, sel := range selections {
		line := RecurringLine{
			ScheduleID:    sel.ScheduleID,
			TicketTypeID:  sel.TicketTypeID,
			OriginalPrice: sel.Price,
		}

		if EarlyBirdApplicable(sel.Rates, sel.Quota, now) {
			line.EarlyBirdDiscount = DiscountAmount(sel.Price, sel.Rates.EarlyBird)
		}
		line.ComboDiscount = DiscountAmount(sel.Price, sel.Rates.Combo)
		line.FinalPrice = line.OriginalPrice - line.EarlyBirdDiscount - line.ComboDiscount

		quote.Lines = append(quote.Lines, line)
		quote.OriginalTotal += line.OriginalPrice
		quote.DiscountTotal += line.EarlyBirdDiscount + line.ComboDiscount
		quote.FinalTotal += line.FinalPrice
	}

	quote.AddOnsTotal = AddOnsTotal(addOns)
	quote.OriginalTotal += quote.AddOnsTotal
	quote.FinalTotal += quote.AddOnsTotal
	return quote
}

// FullScheduleEligible reports whether a full-schedule purchase is still
// permitted: only while the earliest schedule of the whole set has not
// started. Once any schedule has begun the combined purchase stays closed,
// even if later schedules are still in the future. An empty set is never
// eligible.
func FullScheduleEligible(starts []time.Time, now time.Time) bool {
	if len(starts) == 0 {
		return false
	}
	earliest := starts[0]
	for _, s := range starts[1:] {
		if s.Before(earliest) {
			earliest = s
		}
	}
	return now.Before(earliest)
}
