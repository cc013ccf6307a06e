package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/service/customers"
)

func seedCustomer(t *testing.T, svc *customers.CustomerService) *domain.Customer {
	t.Helper()
	customer, err := svc.CreateCustomer(context.Background(), customers.CreateCustomerInput{
		Username: "uid0@email.com",
		Password: "password",
		Status:   domain.StatusGold,
	})
	assert.NoError(t, err)
	return customer
}

func TestCustomerHandler_create(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(customers.CreateCustomerInput{
		Username: "uid0@email.com",
		Password: "password",
		Status:   domain.StatusGold,
	})
	c.Request = httptest.NewRequest("POST", "/customers/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.Customer
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "uid0@email.com", response.Username)
	assert.Empty(t, response.Password)
}

func TestCustomerHandler_get_PasswordNeverLeaves(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)
	seedCustomer(t, customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "username", Value: "uid0@email.com"}}
	c.Request = httptest.NewRequest("GET", "/customers/uid0@email.com", nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Customer
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Password)
	assert.Equal(t, domain.StatusGold, response.Status)
}

func TestCustomerHandler_get_NotFound(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "username", Value: "nobody@email.com"}}
	c.Request = httptest.NewRequest("GET", "/customers/nobody@email.com", nil)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerHandler_login(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)
	seedCustomer(t, customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(loginRequest{Username: "uid0@email.com", Password: "password"})
	c.Request = httptest.NewRequest("POST", "/customers/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var session domain.CustomerSession
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "uid0@email.com", session.CustomerID)

	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, session.ID, cookies[0].Value)
}

func TestCustomerHandler_login_WrongPassword(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)
	seedCustomer(t, customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(loginRequest{Username: "uid0@email.com", Password: "wrong"})
	c.Request = httptest.NewRequest("POST", "/customers/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerHandler_login_UnknownUser(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(loginRequest{Username: "nobody@email.com", Password: "password"})
	c.Request = httptest.NewRequest("POST", "/customers/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerHandler_session_LogoutInvalidates(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)
	seedCustomer(t, customerSvc)

	session, err := customerSvc.CreateSession(context.Background(), "uid0@email.com")
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)

	// Valid session resolves.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/customers/session", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	handler.session(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// Logout deletes it.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/customers/logout", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	handler.logout(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// The same id no longer validates.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/customers/session", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	handler.session(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerHandler_session_NoCookie(t *testing.T) {
	_, customerSvc, _ := setupServices()
	handler := NewCustomerHandler(customerSvc)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/customers/session", nil)

	handler.session(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
