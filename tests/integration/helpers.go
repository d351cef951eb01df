package integration

import (
	"crypto/sha256"
	"fmt"
	"os"
	"testing"

	"tiketin/internal/models"
)

const (
	// BaseURLEnv names the environment variable holding the API base URL.
	// The integration suite is skipped when it is unset.
	BaseURLEnv = "TIKETIN_API_URL"

	DemoUserEmail    = "demo1@tiketin.local"
	DemoUserPassword = "password1"
)

// RequireAPI skips the test unless an API instance is reachable via env config
func RequireAPI(t *testing.T) string {
	baseURL := os.Getenv(BaseURLEnv)
	if baseURL == "" {
		t.Skipf("Skipping integration test: %s is not set", BaseURLEnv)
	}
	return baseURL
}

// FindEventWithSchedules returns the first event in the listing that has
// at least one schedule with a ticket type, or nil
func FindEventWithSchedules(t *testing.T, client *TestClient, events []models.ListEventsResponseItem) (*models.ListEventsResponseItem, *models.EventSchedulesResponse) {
	for i := range events {
		schedules := client.GetEventSchedules(t, events[i].ID)
		for _, s := range schedules.Schedules {
			if !s.Expired && len(s.TicketTypes) > 0 {
				return &events[i], schedules
			}
		}
	}
	return nil, nil
}

// FindUpcomingTicketType returns the first ticket type on a non-expired
// schedule, or nil
func FindUpcomingTicketType(schedules *models.EventSchedulesResponse) (*models.ScheduleView, *models.TicketTypeView) {
	for i := range schedules.Schedules {
		s := &schedules.Schedules[i]
		if s.Expired {
			continue
		}
		if len(s.TicketTypes) > 0 {
			return s, &s.TicketTypes[0]
		}
	}
	return nil, nil
}

// GeneratePaymentToken generates the SHA-256 token the payment gateway expects
func GeneratePaymentToken(amount int64, currency, orderID, teamSlug, password string) string {
	data := fmt.Sprintf("%d%s%s%s%s", amount, currency, orderID, password, teamSlug)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
