package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
	"github.com/Domenick1991/skyfare/internal/store"
)

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingStore) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, customerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingStore) DeleteBooking(ctx context.Context, customerID, bookingID string) error {
	args := m.Called(ctx, customerID, bookingID)
	return args.Error(0)
}

func (m *MockBookingStore) CountBookings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) GetFlightByFlightID(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	args := m.Called(ctx, flightID, flightSegmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetFlightByAirportsAndDepartureDate(ctx context.Context, fromAirport, toAirport string, departure time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, fromAirport, toAirport, departure)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetFlightByAirports(ctx context.Context, fromAirport, toAirport string) ([]domain.Flight, error) {
	args := m.Called(ctx, fromAirport, toAirport)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) CreateFlight(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) StoreFlightSegment(ctx context.Context, name, originPort, destPort string, miles int) error {
	args := m.Called(ctx, name, originPort, destPort, miles)
	return args.Error(0)
}

func (m *MockFlightUseCase) StoreAirportMapping(ctx context.Context, airportCode, airportName string) error {
	args := m.Called(ctx, airportCode, airportName)
	return args.Error(0)
}

func (m *MockFlightUseCase) CountFlights(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightUseCase) CountFlightSegments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightUseCase) CountAirports(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerUseCase struct {
	mock.Mock
}

func (m *MockCustomerUseCase) CreateCustomer(ctx context.Context, input customers.CreateCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) ValidateCustomer(ctx context.Context, username, password string) (bool, error) {
	args := m.Called(ctx, username, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerUseCase) CreateSession(ctx context.Context, customerID string) (*domain.CustomerSession, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerSession), args.Error(1)
}

func (m *MockCustomerUseCase) ValidateSession(ctx context.Context, sessionID string) (*domain.CustomerSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerSession), args.Error(1)
}

func (m *MockCustomerUseCase) InvalidateSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCustomerUseCase) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerUseCase) CountSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(bookings *MockBookingStore, flightSvc *MockFlightUseCase, customerSvc *MockCustomerUseCase, opts ...BookingServiceOption) *BookingService {
	return NewBookingService(bookings, flightSvc, customerSvc, keygen.New(), zap.NewNop().Sugar(), nil, opts...)
}

func TestBookingService_BookFlight_Success(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockFlights, mockCustomers,
		WithProducer(mockProducer, "booking-events"))

	ctx := context.Background()
	flight := &domain.Flight{ID: "f1", FlightSegmentID: "AA0"}
	customer := &domain.Customer{Username: "uid0@email.com"}

	mockFlights.On("GetFlightByFlightID", ctx, "f1", "AA0").Return(flight, nil).Once()
	mockCustomers.On("GetCustomerByUsername", ctx, "uid0@email.com").Return(customer, nil).Once()
	mockBookings.On("CreateBooking", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booked, err := service.BookFlight(ctx, "uid0@email.com", "AA0", "f1")

	assert.NoError(t, err)
	assert.NotEmpty(t, booked.ID)
	assert.Equal(t, "uid0@email.com", booked.CustomerID)
	assert.Equal(t, "f1", booked.FlightID)
	assert.Equal(t, "AA0", booked.FlightSegmentID)

	mockBookings.AssertExpectations(t)
	mockFlights.AssertExpectations(t)
	mockCustomers.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_BookFlight_UnknownFlight(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}

	service := newTestService(mockBookings, mockFlights, mockCustomers)

	ctx := context.Background()
	mockFlights.On("GetFlightByFlightID", ctx, "missing", "AA0").Return(nil, store.ErrNotFound).Once()

	booked, err := service.BookFlight(ctx, "uid0@email.com", "AA0", "missing")

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, booked)
	mockBookings.AssertNotCalled(t, "CreateBooking")
}

func TestBookingService_BookFlight_UnknownCustomer(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}

	service := newTestService(mockBookings, mockFlights, mockCustomers)

	ctx := context.Background()
	flight := &domain.Flight{ID: "f1", FlightSegmentID: "AA0"}
	mockFlights.On("GetFlightByFlightID", ctx, "f1", "AA0").Return(flight, nil).Once()
	mockCustomers.On("GetCustomerByUsername", ctx, "nobody@email.com").Return(nil, store.ErrNotFound).Once()

	booked, err := service.BookFlight(ctx, "nobody@email.com", "AA0", "f1")

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, booked)
	mockBookings.AssertNotCalled(t, "CreateBooking")
}

func TestBookingService_BookFlight_Duplicate(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockFlights, mockCustomers,
		WithProducer(mockProducer, "booking-events"))

	ctx := context.Background()
	flight := &domain.Flight{ID: "f1", FlightSegmentID: "AA0"}
	customer := &domain.Customer{Username: "uid0@email.com"}

	mockFlights.On("GetFlightByFlightID", ctx, "f1", "AA0").Return(flight, nil).Once()
	mockCustomers.On("GetCustomerByUsername", ctx, "uid0@email.com").Return(customer, nil).Once()
	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(store.ErrDuplicateBooking).Once()

	booked, err := service.BookFlight(ctx, "uid0@email.com", "AA0", "f1")

	assert.ErrorIs(t, err, store.ErrDuplicateBooking)
	assert.Nil(t, booked)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestBookingService_BookFlight_NoProducer(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}

	service := newTestService(mockBookings, mockFlights, mockCustomers)

	ctx := context.Background()
	flight := &domain.Flight{ID: "f1", FlightSegmentID: "AA0"}
	customer := &domain.Customer{Username: "uid0@email.com"}

	mockFlights.On("GetFlightByFlightID", ctx, "f1", "AA0").Return(flight, nil).Once()
	mockCustomers.On("GetCustomerByUsername", ctx, "uid0@email.com").Return(customer, nil).Once()
	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()

	booked, err := service.BookFlight(ctx, "uid0@email.com", "AA0", "f1")

	assert.NoError(t, err)
	assert.NotNil(t, booked)
	mockBookings.AssertExpectations(t)
}

func TestBookingService_BookFlight_PublishFailureDoesNotFailBooking(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockFlights, mockCustomers,
		WithProducer(mockProducer, "booking-events"))

	ctx := context.Background()
	flight := &domain.Flight{ID: "f1", FlightSegmentID: "AA0"}
	customer := &domain.Customer{Username: "uid0@email.com"}

	mockFlights.On("GetFlightByFlightID", ctx, "f1", "AA0").Return(flight, nil).Once()
	mockCustomers.On("GetCustomerByUsername", ctx, "uid0@email.com").Return(customer, nil).Once()
	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	booked, err := service.BookFlight(ctx, "uid0@email.com", "AA0", "f1")

	assert.NoError(t, err)
	assert.NotNil(t, booked)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_GetBooking_NotFound(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}

	service := newTestService(mockBookings, mockFlights, mockCustomers)

	ctx := context.Background()
	mockBookings.On("GetBooking", ctx, "uid0@email.com", "missing").Return(nil, store.ErrNotFound).Once()

	booked, err := service.GetBooking(ctx, "uid0@email.com", "missing")

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, booked)
}

func TestBookingService_GetBookingsByUser(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}

	service := newTestService(mockBookings, mockFlights, mockCustomers)

	ctx := context.Background()
	bookings := []domain.Booking{
		{ID: "b1", CustomerID: "uid0@email.com", FlightID: "f1"},
		{ID: "b2", CustomerID: "uid0@email.com", FlightID: "f2"},
	}
	mockBookings.On("GetBookingsByCustomer", ctx, "uid0@email.com").Return(bookings, nil).Once()

	result, err := service.GetBookingsByUser(ctx, "uid0@email.com")

	assert.NoError(t, err)
	assert.Equal(t, bookings, result)
}

func TestBookingService_CancelBooking_PublishesCancellation(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockFlights, mockCustomers,
		WithProducer(mockProducer, "booking-events"))

	ctx := context.Background()
	mockBookings.On("DeleteBooking", ctx, "uid0@email.com", "b1").Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", "b1", mock.Anything).Return(nil).Once()

	err := service.CancelBooking(ctx, "uid0@email.com", "b1")

	assert.NoError(t, err)
	mockBookings.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CancelBooking_StoreError(t *testing.T) {
	mockBookings := &MockBookingStore{}
	mockFlights := &MockFlightUseCase{}
	mockCustomers := &MockCustomerUseCase{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockFlights, mockCustomers,
		WithProducer(mockProducer, "booking-events"))

	ctx := context.Background()
	mockBookings.On("DeleteBooking", ctx, "uid0@email.com", "b1").Return(errors.New("grid error")).Once()

	err := service.CancelBooking(ctx, "uid0@email.com", "b1")

	assert.Error(t, err)
	mockProducer.AssertNotCalled(t, "Publish")
}
