package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func quotaWithEarlyDay(earlyDay time.Time) Quota {
	return Quota{Exists: true, MaxPerUser: 4, EarlyDay: &earlyDay}
}

func TestEarlyBirdApplicable(t *testing.T) {
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name  string
		rates TicketRates
		quota Quota
		want  bool
	}{
		{"inside window", TicketRates{EarlyBird: 0.10}, quotaWithEarlyDay(future), true},
		{"window passed", TicketRates{EarlyBird: 0.10}, quotaWithEarlyDay(past), false},
		{"no early day configured", TicketRates{EarlyBird: 0.10}, Quota{Exists: true, MaxPerUser: 4}, false},
		{"no quota record", TicketRates{EarlyBird: 0.10}, Quota{}, false},
		{"zero rate", TicketRates{EarlyBird: 0}, quotaWithEarlyDay(future), false},
		{"negative rate", TicketRates{EarlyBird: -0.10}, quotaWithEarlyDay(future), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EarlyBirdApplicable(tt.rates, tt.quota, now))
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	assert.Equal(t, int64(100000), DiscountAmount(1000000, 0.10))
	assert.Equal(t, int64(50000), DiscountAmount(1000000, 0.05))
	assert.Equal(t, int64(0), DiscountAmount(1000000, 0))
	assert.Equal(t, int64(0), DiscountAmount(1000000, -0.5))
	// rounds half-up on fractional minor units
	assert.Equal(t, int64(33), DiscountAmount(333, 0.10))
}

func TestQuoteSingleNoDiscount(t *testing.T) {
	quote := QuoteSingle(500000, 3, TicketRates{}, Quota{}, now, nil)

	assert.Equal(t, int64(500000), quote.UnitPrice)
	assert.Equal(t, int64(1500000), quote.TicketTotal)
	assert.Equal(t, int64(1500000), quote.GrandTotal)
	assert.False(t, quote.EarlyBird)
}

func TestQuoteSingleEarlyBird(t *testing.T) {
	quota := quotaWithEarlyDay(now.Add(24 * time.Hour))
	quote := QuoteSingle(1000000, 2, TicketRates{EarlyBird: 0.10, Combo: 0.05}, quota, now, nil)

	// combo rate must not leak into the single-ticket flow
	assert.True(t, quote.EarlyBird)
	assert.Equal(t, int64(900000), quote.UnitPrice)
	assert.Equal(t, int64(1800000), quote.TicketTotal)
	assert.Equal(t, int64(1800000), quote.GrandTotal)
}

func TestQuoteSingleAddOns(t *testing.T) {
	addOns := []AddOnLine{
		{UnitPrice: 25000, Quantity: 2},
		{UnitPrice: 10000, Quantity: 1},
	}
	quote := QuoteSingle(500000, 1, TicketRates{}, Quota{}, now, addOns)

	assert.Equal(t, int64(60000), quote.AddOnsTotal)
	assert.Equal(t, int64(560000), quote.GrandTotal)
}

func TestQuoteRecurringStacksAdditively(t *testing.T) {
	quota := quotaWithEarlyDay(now.Add(24 * time.Hour))
	quote := QuoteRecurring([]RecurringSelection{
		{
			ScheduleID:   1,
			TicketTypeID: 11,
			Price:        1000000,
			Rates:        TicketRates{EarlyBird: 0.10, Combo: 0.05},
			Quota:        quota,
		},
	}, now, nil)

	line := quote.Lines[0]
	assert.Equal(t, int64(100000), line.EarlyBirdDiscount)
	assert.Equal(t, int64(50000), line.ComboDiscount)
	assert.Equal(t, int64(850000), line.FinalPrice)
	// both formulations must agree: price*(1-eb-combo) == price - ebDisc - comboDisc
	assert.Equal(t, line.OriginalPrice-line.EarlyBirdDiscount-line.ComboDiscount, line.FinalPrice)
	assert.Equal(t, int64(150000), quote.DiscountTotal)
	assert.Equal(t, int64(1000000), quote.OriginalTotal)
	assert.Equal(t, int64(850000), quote.FinalTotal)
}

func TestQuoteRecurringComboOnlyWhenWindowPassed(t *testing.T) {
	quota := quotaWithEarlyDay(now.Add(-time.Hour))
	quote := QuoteRecurring([]RecurringSelection{
		{ScheduleID: 1, TicketTypeID: 11, Price: 200000, Rates: TicketRates{EarlyBird: 0.10, Combo: 0.05}, Quota: quota},
	}, now, nil)

	line := quote.Lines[0]
	assert.Equal(t, int64(0), line.EarlyBirdDiscount)
	assert.Equal(t, int64(10000), line.ComboDiscount)
	assert.Equal(t, int64(190000), line.FinalPrice)
}

func TestQuoteRecurringAggregates(t *testing.T) {
	quota := quotaWithEarlyDay(now.Add(24 * time.Hour))
	rates := TicketRates{EarlyBird: 0.10, Combo: 0.05}
	quote := QuoteRecurring([]RecurringSelection{
		{ScheduleID: 1, TicketTypeID: 11, Price: 1000000, Rates: rates, Quota: quota},
		{ScheduleID: 2, TicketTypeID: 21, Price: 400000, Rates: rates, Quota: quota},
	}, now, []AddOnLine{{UnitPrice: 50000, Quantity: 1}})

	assert.Len(t, quote.Lines, 2)
	assert.Equal(t, int64(1450000), quote.OriginalTotal)
	assert.Equal(t, int64(50000), quote.AddOnsTotal)
	assert.Equal(t, int64(210000), quote.DiscountTotal)
	// add-ons never discounted
	assert.Equal(t, int64(850000+340000+50000), quote.FinalTotal)
}

func TestQuoteRecurringNoFloorAtZero(t *testing.T) {
	// combined rate >= 1 is not clamped; the price goes to zero or below
	quote := QuoteRecurring([]RecurringSelection{
		{
			ScheduleID:   1,
			TicketTypeID: 11,
			Price:        100000,
			Rates:        TicketRates{EarlyBird: 0.60, Combo: 0.50},
			Quota:        quotaWithEarlyDay(now.Add(time.Hour)),
		},
	}, now, nil)

	assert.Equal(t, int64(-10000), quote.Lines[0].FinalPrice)
}

func TestFullScheduleEligible(t *testing.T) {
	tests := []struct {
		name   string
		starts []time.Time
		want   bool
	}{
		{"all future", []time.Time{now.Add(time.Hour), now.Add(48 * time.Hour)}, true},
		{"earliest started, later still future", []time.Time{now.Add(-time.Hour), now.Add(48 * time.Hour)}, false},
		{"single future schedule", []time.Time{now.Add(time.Minute)}, true},
		{"single started schedule", []time.Time{now}, false},
		{"empty set", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullScheduleEligible(tt.starts, now))
		})
	}
}
