package integration

import (
	"net/http"
	"testing"

	"tiketin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBrowseEvents walks the read path: listing, schedules, availability
// and quota for a demo user.
func TestBrowseEvents(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events, "Expected seeded events")

	event, schedules := FindEventWithSchedules(t, client, events)
	require.NotNil(t, event, "Expected an event with upcoming schedules")

	_, ticketType := FindUpcomingTicketType(schedules)
	require.NotNil(t, ticketType)
	assert.Greater(t, ticketType.BasePrice, int64(0))

	availability := client.GetAvailability(t, ticketType.ID)
	assert.Equal(t, ticketType.ID, availability.TicketTypeID)
	if availability.Known {
		assert.Equal(t, availability.TotalQuantity, availability.Remaining+availability.Sold)
	}

	quota := client.GetQuota(t, ticketType.ID)
	assert.Equal(t, ticketType.ID, quota.TicketTypeID)
	assert.GreaterOrEqual(t, quota.RemainingForUser, 0)
}

// TestSinglePurchaseLifecycle books one schedule, verifies the frozen
// totals in the listing, then cancels and checks the stock comes back.
func TestSinglePurchaseLifecycle(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)

	event, schedules := FindEventWithSchedules(t, client, events)
	require.NotNil(t, event)

	schedule, ticketType := FindUpcomingTicketType(schedules)
	require.NotNil(t, ticketType)

	quota := client.GetQuota(t, ticketType.ID)
	if quota.State != "available" || quota.RemainingForUser < 1 {
		t.Skipf("Demo user cannot book ticket type %d (state %s)", ticketType.ID, quota.State)
	}

	before := client.GetAvailability(t, ticketType.ID)

	purchase := client.CreateSinglePurchase(t, models.CreateSinglePurchaseRequest{
		ScheduleID:   schedule.ID,
		TicketTypeID: ticketType.ID,
		Quantity:     1,
	})
	require.True(t, purchase.Success)
	require.Greater(t, purchase.Data.ID, int64(0))

	after := client.GetAvailability(t, ticketType.ID)
	if before.Known && after.Known {
		assert.Equal(t, before.Remaining-1, after.Remaining)
	}

	purchases := client.ListPurchases(t)
	var created *models.ListPurchasesResponseItem
	for i := range purchases {
		if purchases[i].ID == purchase.Data.ID {
			created = &purchases[i]
			break
		}
	}
	require.NotNil(t, created, "Created purchase should appear in the user's list")
	assert.Equal(t, models.PurchaseKindSingle, created.Kind)
	assert.Equal(t, models.PurchaseStatusPending, created.Status)
	assert.Equal(t, created.OriginalTotal-created.DiscountTotal, created.FinalTotal)

	client.CancelPurchase(t, purchase.Data.ID)

	restored := client.GetAvailability(t, ticketType.ID)
	if after.Known && restored.Known {
		assert.Equal(t, after.Remaining+1, restored.Remaining)
	}
}

// TestQuantityClampWarning requests more tickets than the per-user quota
// allows and expects a reduced booking with a warning.
func TestQuantityClampWarning(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)

	event, schedules := FindEventWithSchedules(t, client, events)
	require.NotNil(t, event)

	schedule, ticketType := FindUpcomingTicketType(schedules)
	require.NotNil(t, ticketType)

	quota := client.GetQuota(t, ticketType.ID)
	if quota.State != "available" || quota.RemainingForUser < 1 {
		t.Skipf("Demo user cannot book ticket type %d (state %s)", ticketType.ID, quota.State)
	}

	purchase := client.CreateSinglePurchase(t, models.CreateSinglePurchaseRequest{
		ScheduleID:   schedule.ID,
		TicketTypeID: ticketType.ID,
		Quantity:     quota.RemainingForUser + 5,
	})
	require.True(t, purchase.Success)
	assert.NotEmpty(t, purchase.Warning, "Over-quota request should carry a clamp warning")

	client.CancelPurchase(t, purchase.Data.ID)
}

// TestRecurringPurchaseFlow books one ticket per schedule across a whole
// event and checks the per-line combo discount in the stored items.
func TestRecurringPurchaseFlow(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)

	var target *models.EventSchedulesResponse
	for i := range events {
		schedules := client.GetEventSchedules(t, events[i].ID)
		if schedules.FullScheduleEligible {
			target = schedules
			break
		}
	}
	if target == nil {
		t.Skip("No event is currently eligible for a full-schedule purchase")
	}

	selections := make([]models.RecurringSelectionRequest, 0, len(target.Schedules))
	for _, s := range target.Schedules {
		require.NotEmpty(t, s.TicketTypes)
		selections = append(selections, models.RecurringSelectionRequest{
			ScheduleID:   s.ID,
			TicketTypeID: s.TicketTypes[0].ID,
		})
	}

	purchase := client.CreateRecurringPurchase(t, models.CreateRecurringPurchaseRequest{
		EventID:    target.EventID,
		Selections: selections,
	})
	require.True(t, purchase.Success)

	purchases := client.ListPurchases(t)
	var created *models.ListPurchasesResponseItem
	for i := range purchases {
		if purchases[i].ID == purchase.Data.ID {
			created = &purchases[i]
			break
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, models.PurchaseKindRecurring, created.Kind)
	assert.Len(t, created.Items, len(selections))

	var finalSum int64
	for _, item := range created.Items {
		assert.Equal(t,
			item.OriginalPrice-item.EarlyBirdDiscount-item.ComboDiscount,
			item.FinalPrice)
		finalSum += item.FinalPrice
	}
	assert.Equal(t, created.FinalTotal, finalSum)

	client.CancelPurchase(t, purchase.Data.ID)
}

// TestPaymentInitiation creates a booking and initiates a payment for it,
// expecting a gateway redirect URL back.
func TestPaymentInitiation(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)

	event, schedules := FindEventWithSchedules(t, client, events)
	require.NotNil(t, event)

	schedule, ticketType := FindUpcomingTicketType(schedules)
	require.NotNil(t, ticketType)

	quota := client.GetQuota(t, ticketType.ID)
	if quota.State != "available" || quota.RemainingForUser < 1 {
		t.Skipf("Demo user cannot book ticket type %d (state %s)", ticketType.ID, quota.State)
	}

	purchase := client.CreateSinglePurchase(t, models.CreateSinglePurchaseRequest{
		ScheduleID:   schedule.ID,
		TicketTypeID: ticketType.ID,
		Quantity:     1,
	})
	require.True(t, purchase.Success)

	redirectURL := client.CreatePayment(t, purchase.Data.ID)
	assert.NotEmpty(t, redirectURL, "Payment initiation should return a redirect URL")

	client.CancelPurchase(t, purchase.Data.ID)
}

// TestEventSearchFilters checks that text and date filters narrow the event
// listing. The assertions hold for both the search index and the database
// fallback, so the test exercises whichever backend the deployment is on.
func TestEventSearchFilters(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)
	target := events[0]

	byTitle := client.SearchEvents(t, target.Title, "")
	found := false
	for _, e := range byTitle {
		if e.ID == target.ID {
			found = true
			break
		}
	}
	assert.True(t, found, "Searching an event's own title should return it")

	schedules := client.GetEventSchedules(t, target.ID)
	require.NotEmpty(t, schedules.Schedules)
	date := schedules.Schedules[0].StartTime.Format("2006-01-02")

	byDate := client.SearchEvents(t, "", date)
	found = false
	for _, e := range byDate {
		if e.ID == target.ID {
			found = true
			break
		}
	}
	assert.True(t, found, "Filtering by a schedule's date should return its event")

	noMatch := client.SearchEvents(t, "zzqqxxyyzz", "")
	assert.Empty(t, noMatch, "A nonsense query should match nothing")
}

// TestRecurringDuplicateSelectionRejected sends a full-schedule booking that
// picks the same schedule twice and expects a rejection, not a double hold.
func TestRecurringDuplicateSelectionRejected(t *testing.T) {
	baseURL := RequireAPI(t)
	client := NewTestClient(baseURL, DemoUserEmail, DemoUserPassword)

	events := client.ListEvents(t)
	require.NotEmpty(t, events)

	var target *models.EventSchedulesResponse
	for i := range events {
		schedules := client.GetEventSchedules(t, events[i].ID)
		if schedules.FullScheduleEligible && len(schedules.Schedules) > 0 {
			target = schedules
			break
		}
	}
	if target == nil {
		t.Skip("No event is currently eligible for a full-schedule purchase")
	}

	s := target.Schedules[0]
	require.NotEmpty(t, s.TicketTypes)
	pick := models.RecurringSelectionRequest{
		ScheduleID:   s.ID,
		TicketTypeID: s.TicketTypes[0].ID,
	}

	before := client.GetQuota(t, pick.TicketTypeID)

	resp := client.makeRequest(t, "POST", "/api/user/event/recurring", models.CreateRecurringPurchaseRequest{
		EventID:    target.EventID,
		Selections: []models.RecurringSelectionRequest{pick, pick},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	after := client.GetQuota(t, pick.TicketTypeID)
	assert.Equal(t, before.PendingByUser, after.PendingByUser,
		"A rejected duplicate selection must not leave pending holds")
}
