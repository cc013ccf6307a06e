package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skyfare/internal/service/flights"
	"github.com/Domenick1991/skyfare/internal/store"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.query)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.POST("/segments", h.createSegment)
	router.POST("/airports", h.createAirport)
}

// query searches flights between two airports. With a date it answers from
// the flight-list cache; without one it browses the whole route uncached.
func (h *FlightHandler) query(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to airports are required"})
		return
	}

	if date := c.Query("date"); date != "" {
		departure, err := time.Parse(time.DateOnly, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		result, err := h.service.GetFlightByAirportsAndDepartureDate(c.Request.Context(), from, to, departure)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.service.GetFlightByAirports(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetFlightByFlightID(c.Request.Context(), c.Param("id"), c.Query("segment"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var input flights.CreateFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.CreateFlight(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, flight)
}

type createSegmentRequest struct {
	Name       string `json:"name"`
	OriginPort string `json:"origin_port"`
	DestPort   string `json:"dest_port"`
	Miles      int    `json:"miles"`
}

func (h *FlightHandler) createSegment(c *gin.Context) {
	var req createSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.StoreFlightSegment(c.Request.Context(), req.Name, req.OriginPort, req.DestPort, req.Miles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

type createAirportRequest struct {
	AirportCode string `json:"airport_code"`
	AirportName string `json:"airport_name"`
}

func (h *FlightHandler) createAirport(c *gin.Context) {
	var req createAirportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.StoreAirportMapping(c.Request.Context(), req.AirportCode, req.AirportName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}
