package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"tiketin/internal/models"
)

// TestClient provides methods for driving a running API instance
type TestClient struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

// NewTestClient creates a new test client authenticating as the given user
func NewTestClient(baseURL, email, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	req.SetBasicAuth(c.Email, c.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// ListEvents lists events
func (c *TestClient) ListEvents(t *testing.T) []models.ListEventsResponseItem {
	resp := c.makeRequest(t, "GET", "/api/events", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ListEvents returned status %d", resp.StatusCode)
	}

	var events []models.ListEventsResponseItem
	decodeBody(t, resp, &events)
	return events
}

// SearchEvents lists events filtered by text query and/or schedule date
func (c *TestClient) SearchEvents(t *testing.T, query, date string) []models.ListEventsResponseItem {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if date != "" {
		params.Set("date", date)
	}

	resp := c.makeRequest(t, "GET", "/api/events?"+params.Encode(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("SearchEvents returned status %d", resp.StatusCode)
	}

	var events []models.ListEventsResponseItem
	decodeBody(t, resp, &events)
	return events
}

// GetEventSchedules fetches the full schedule of an event
func (c *TestClient) GetEventSchedules(t *testing.T, eventID int64) *models.EventSchedulesResponse {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/events/%d/schedules", eventID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetEventSchedules returned status %d", resp.StatusCode)
	}

	var schedules models.EventSchedulesResponse
	decodeBody(t, resp, &schedules)
	return &schedules
}

// GetAvailability fetches the remaining stock of a ticket type
func (c *TestClient) GetAvailability(t *testing.T, ticketTypeID int64) *models.AvailabilityResponse {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/tickets/%d/availability", ticketTypeID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetAvailability returned status %d", resp.StatusCode)
	}

	var availability models.AvailabilityResponse
	decodeBody(t, resp, &availability)
	return &availability
}

// GetQuota fetches the caller's quota record for a ticket type
func (c *TestClient) GetQuota(t *testing.T, ticketTypeID int64) *models.QuotaResponse {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/event/quota/%d", ticketTypeID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetQuota returned status %d", resp.StatusCode)
	}

	var quota models.QuotaResponse
	decodeBody(t, resp, &quota)
	return &quota
}

// CreateSinglePurchase books tickets for one schedule
func (c *TestClient) CreateSinglePurchase(t *testing.T, req models.CreateSinglePurchaseRequest) *models.PurchaseResponse {
	resp := c.makeRequest(t, "POST", "/api/user/event", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateSinglePurchase returned status %d", resp.StatusCode)
	}

	var purchase models.PurchaseResponse
	decodeBody(t, resp, &purchase)
	return &purchase
}

// CreateRecurringPurchase books one ticket per schedule across an event
func (c *TestClient) CreateRecurringPurchase(t *testing.T, req models.CreateRecurringPurchaseRequest) *models.PurchaseResponse {
	resp := c.makeRequest(t, "POST", "/api/user/event/recurring", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateRecurringPurchase returned status %d", resp.StatusCode)
	}

	var purchase models.PurchaseResponse
	decodeBody(t, resp, &purchase)
	return &purchase
}

// ListPurchases lists the caller's purchases
func (c *TestClient) ListPurchases(t *testing.T) []models.ListPurchasesResponseItem {
	resp := c.makeRequest(t, "GET", "/api/user/event", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ListPurchases returned status %d", resp.StatusCode)
	}

	var purchases []models.ListPurchasesResponseItem
	decodeBody(t, resp, &purchases)
	return purchases
}

// CancelPurchase cancels a purchase
func (c *TestClient) CancelPurchase(t *testing.T, purchaseID int64) {
	resp := c.makeRequest(t, "DELETE", fmt.Sprintf("/api/user/event/%d", purchaseID), nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("CancelPurchase returned status %d", resp.StatusCode)
	}
}

// CreatePayment initiates a payment and returns the redirect URL
func (c *TestClient) CreatePayment(t *testing.T, purchaseID int64) string {
	resp := c.makeRequest(t, "POST", "/api/payments/create", models.CreatePaymentRequest{PurchaseID: purchaseID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("CreatePayment returned status %d", resp.StatusCode)
	}

	var payment models.CreatePaymentResponse
	decodeBody(t, resp, &payment)
	return payment.Data.RedirectURL
}
