package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skyfare/internal/service/booking"
	"github.com/Domenick1991/skyfare/internal/store"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerID      string `json:"customer_id"`
	FlightSegmentID string `json:"flight_segment_id"`
	FlightID        string `json:"flight_id"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.listByCustomer)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booked, err := h.service.BookFlight(c.Request.Context(), req.CustomerID, req.FlightSegmentID, req.FlightID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateBooking):
			c.JSON(http.StatusConflict, gin.H{"error": "booking already exists"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "customer or flight not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, booked)
}

// Bookings are partitioned by customer, so reads need the customer query
// parameter alongside the booking id.
func (h *BookingHandler) get(c *gin.Context) {
	customerID := c.Query("customer")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer is required"})
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *BookingHandler) listByCustomer(c *gin.Context) {
	customerID := c.Query("customer")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer is required"})
		return
	}
	bookings, err := h.service.GetBookingsByUser(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	customerID := c.Query("customer")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer is required"})
		return
	}
	if err := h.service.CancelBooking(c.Request.Context(), customerID, c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
