package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skyfare/internal/loader"
	"github.com/Domenick1991/skyfare/internal/service/booking"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
)

// OpsHandler exposes operational endpoints: entity counts, the backend the
// process resolved at startup, bulk data loading, and prometheus metrics.
type OpsHandler struct {
	flights   flights.FlightUseCase
	customers customers.CustomerUseCase
	bookings  booking.BookingUseCase

	loader       *loader.Loader
	mileageFile  string
	numCustomers int

	backendName string
	metrics     http.Handler
}

func NewOpsHandler(
	flightSvc flights.FlightUseCase,
	customerSvc customers.CustomerUseCase,
	bookingSvc booking.BookingUseCase,
	dataLoader *loader.Loader,
	mileageFile string,
	numCustomers int,
	backendName string,
	metricsHandler http.Handler,
) *OpsHandler {
	return &OpsHandler{
		flights:      flightSvc,
		customers:    customerSvc,
		bookings:     bookingSvc,
		loader:       dataLoader,
		mileageFile:  mileageFile,
		numCustomers: numCustomers,
		backendName:  backendName,
		metrics:      metricsHandler,
	}
}

func (h *OpsHandler) Register(router *gin.RouterGroup) {
	router.GET("/counts", h.counts)
	router.GET("/backend", h.backend)
	router.POST("/load", h.load)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
}

func (h *OpsHandler) counts(c *gin.Context) {
	ctx := c.Request.Context()
	result := gin.H{}

	counters := []struct {
		name  string
		count func() (int64, error)
	}{
		{"flights", func() (int64, error) { return h.flights.CountFlights(ctx) }},
		{"flight_segments", func() (int64, error) { return h.flights.CountFlightSegments(ctx) }},
		{"airports", func() (int64, error) { return h.flights.CountAirports(ctx) }},
		{"customers", func() (int64, error) { return h.customers.CountCustomers(ctx) }},
		{"sessions", func() (int64, error) { return h.customers.CountSessions(ctx) }},
		{"bookings", func() (int64, error) { return h.bookings.CountBookings(ctx) }},
	}
	for _, counter := range counters {
		n, err := counter.count()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		result[counter.name] = n
	}
	c.JSON(http.StatusOK, result)
}

func (h *OpsHandler) backend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backend": h.backendName})
}

type loadRequest struct {
	NumCustomers int `json:"num_customers"`
}

func (h *OpsHandler) load(c *gin.Context) {
	// The body is optional; an empty request loads the configured defaults.
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.NumCustomers = 0
	}
	numCustomers := req.NumCustomers
	if numCustomers <= 0 {
		numCustomers = h.numCustomers
	}

	message, err := h.loader.Load(c.Request.Context(), h.mileageFile, numCustomers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
