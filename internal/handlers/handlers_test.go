package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tiketin/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// setupRouter binds the handlers without backing services; the routes
// exercised here stop at validation or authentication.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(nil, nil)
	r := gin.New()

	api := r.Group("/api")
	{
		api.POST("/events", h.CreateEvent)
		api.GET("/events", h.ListEvents)
		api.GET("/events/:eventId/schedules", h.GetEventSchedules)
		api.GET("/tickets/:ticketTypeId/availability", h.GetAvailability)
		api.GET("/event/quota/:ticketTypeId", h.GetQuota)

		api.POST("/user/event", h.CreateSinglePurchase)
		api.GET("/user/event", h.ListPurchases)
		api.POST("/user/event/recurring", h.CreateRecurringPurchase)
		api.DELETE("/user/event/:purchaseId", h.CancelPurchase)

		api.PUT("/user/session/selection", h.SaveSelection)
		api.GET("/user/session/selection", h.GetSelection)

		api.POST("/payments/create", h.CreatePayment)
		api.GET("/payments/success", h.NotifyPaymentCompleted)
		api.GET("/payments/fail", h.NotifyPaymentFailed)
	}

	return r
}

func TestCreateEventValidation(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("POST", "/api/events", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Title, type and venue are all required
	jsonBody, _ := json.Marshal(map[string]interface{}{"title": "Jazz Nights"})
	req, _ = http.NewRequest("POST", "/api/events", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEventsValidation(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/events?page=0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest("GET", "/api/events?pageSize=25", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEventSchedulesInvalidID(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/events/abc/schedules", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailabilityInvalidID(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/tickets/abc/availability", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQuotaRequiresUser(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/event/quota/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid id but no authenticated user on the context
	req, _ = http.NewRequest("GET", "/api/event/quota/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateSinglePurchaseValidation(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("POST", "/api/user/event", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing required fields
	jsonBody, _ := json.Marshal(map[string]interface{}{"schedule_id": 1})
	req, _ = http.NewRequest("POST", "/api/user/event", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Well-formed request without an authenticated user
	reqBody := models.CreateSinglePurchaseRequest{
		ScheduleID:   1,
		TicketTypeID: 2,
		Quantity:     1,
	}
	jsonBody, _ = json.Marshal(reqBody)
	req, _ = http.NewRequest("POST", "/api/user/event", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecurringPurchaseValidation(t *testing.T) {
	r := setupRouter()

	// Selections are required and must not be empty
	jsonBody, _ := json.Marshal(map[string]interface{}{
		"event_id":   1,
		"selections": []interface{}{},
	})
	req, _ := http.NewRequest("POST", "/api/user/event/recurring", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	reqBody := models.CreateRecurringPurchaseRequest{
		EventID: 1,
		Selections: []models.RecurringSelectionRequest{
			{ScheduleID: 1, TicketTypeID: 2},
		},
	}
	jsonBody, _ = json.Marshal(reqBody)
	req, _ = http.NewRequest("POST", "/api/user/event/recurring", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPurchasesRequiresUser(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/user/event", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCancelPurchaseValidation(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("DELETE", "/api/user/event/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest("DELETE", "/api/user/event/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePaymentValidation(t *testing.T) {
	r := setupRouter()

	jsonBody, _ := json.Marshal(map[string]interface{}{})
	req, _ := http.NewRequest("POST", "/api/payments/create", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentRedirectsRequirePaymentID(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/payments/success", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest("GET", "/api/payments/fail", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectionSessionUnavailableWithoutStore(t *testing.T) {
	r := setupRouter()

	jsonBody, _ := json.Marshal(models.SelectionSession{EventID: 1, ScheduleID: 2, TicketTypeID: 3, Quantity: 1})
	req, _ := http.NewRequest("PUT", "/api/user/session/selection", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	req, _ = http.NewRequest("GET", "/api/user/session/selection", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
