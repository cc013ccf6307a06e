package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/store"
)

// SessionCookie carries the session id between login and authenticated calls.
const SessionCookie = "sessionid"

type CustomerHandler struct {
	service customers.CustomerUseCase
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewCustomerHandler(service customers.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:username", h.get)
	router.PUT("/:username", h.update)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.GET("/session", h.session)
}

func (h *CustomerHandler) create(c *gin.Context) {
	var input customers.CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.service.CreateCustomer(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	customer.Password = ""
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) get(c *gin.Context) {
	customer, err := h.service.GetCustomerByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) update(c *gin.Context) {
	var customer domain.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer.Username = c.Param("username")
	updated, err := h.service.UpdateCustomer(c.Request.Context(), &customer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated.Password = ""
	c.JSON(http.StatusOK, updated)
}

// login checks credentials and opens a session, returned both in the body
// and as a cookie.
func (h *CustomerHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid, err := h.service.ValidateCustomer(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.SetCookie(SessionCookie, session.ID, 0, "/", "", false, true)
	c.JSON(http.StatusOK, session)
}

func (h *CustomerHandler) logout(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookie)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no session"})
		return
	}
	if err := h.service.InvalidateSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *CustomerHandler) session(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	session, err := h.service.ValidateSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}
