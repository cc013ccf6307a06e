package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/service/booking"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
	"github.com/Domenick1991/skyfare/internal/store/memstore"
)

// Handlers are exercised against real services over the in-process backend.
func setupServices() (*flights.FlightService, *customers.CustomerService, *booking.BookingService) {
	st := memstore.New()
	keys := keygen.New()
	log := zap.NewNop().Sugar()

	flightSvc := flights.NewFlightService(st, keys, log, nil)
	customerSvc := customers.NewCustomerService(st, keys, log)
	bookingSvc := booking.NewBookingService(st, flightSvc, customerSvc, keys, log, nil)
	return flightSvc, customerSvc, bookingSvc
}

func seedRoute(t *testing.T, svc *flights.FlightService, departure time.Time) *domain.Flight {
	t.Helper()
	ctx := context.Background()
	assert.NoError(t, svc.StoreFlightSegment(ctx, "AA0", "BOS", "JFK", 187))
	flight, err := svc.CreateFlight(ctx, flights.CreateFlightInput{
		FlightSegmentID:   "AA0",
		DepartureTime:     departure,
		ArrivalTime:       departure.Add(time.Hour),
		FirstClassCents:   50000,
		EconomyClassCents: 20000,
	})
	assert.NoError(t, err)
	return flight
}

func TestFlightHandler_query_WithDate(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	departure := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	seedRoute(t, flightSvc, departure)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/?from=BOS&to=JFK&date=2026-09-10", nil)

	handler.query(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result, 1)
	assert.Equal(t, "AA0", result[0].FlightSegmentID)
}

func TestFlightHandler_query_UnknownRoute(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/?from=XXX&to=YYY&date=2026-09-10", nil)

	handler.query(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result)
}

func TestFlightHandler_query_MissingAirports(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/?from=BOS", nil)

	handler.query(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_query_BadDate(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/?from=BOS&to=JFK&date=tomorrow", nil)

	handler.query(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_query_Browse(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	departure := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	seedRoute(t, flightSvc, departure)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/?from=BOS&to=JFK", nil)

	handler.query(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result, 1)
}

func TestFlightHandler_get(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	departure := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	flight := seedRoute(t, flightSvc, departure)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: flight.ID}}
	c.Request = httptest.NewRequest("GET", "/flights/"+flight.ID+"?segment=AA0", nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, flight.ID, result.ID)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	flightSvc, _, _ := setupServices()
	handler := NewFlightHandler(flightSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/flights/missing?segment=AA0", nil)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
