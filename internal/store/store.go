package store

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/skyfare/internal/domain"
)

var (
	// ErrNotFound is the absent-value result for customer, session, booking,
	// segment and flight lookups. Callers branch on it; it is never a failure.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBooking is returned when a booking with the same generated
	// id already exists in the customer's booking collection.
	ErrDuplicateBooking = errors.New("duplicate booking")
)

// FlightStore persists segments, flights and airport mappings. Segments and
// flights are written once by the bulk loader and treated as immutable.
type FlightStore interface {
	GetFlight(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error)
	GetFlightSegment(ctx context.Context, origin, dest string) (*domain.FlightSegment, error)
	// GetFlightsBySegment returns the flights on a segment, filtered to the
	// departure day when departure is non-nil. A nil departure is the
	// unconditioned browse query.
	GetFlightsBySegment(ctx context.Context, segment *domain.FlightSegment, departure *time.Time) ([]domain.Flight, error)
	CreateFlight(ctx context.Context, f *domain.Flight) error
	StoreFlightSegment(ctx context.Context, seg *domain.FlightSegment) error
	StoreAirportMapping(ctx context.Context, m *domain.AirportCodeMapping) error
	CountFlights(ctx context.Context) (int64, error)
	CountFlightSegments(ctx context.Context) (int64, error)
	CountAirports(ctx context.Context) (int64, error)
}

// CustomerStore persists customers and their login sessions.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	UpdateCustomer(ctx context.Context, c *domain.Customer) error
	GetCustomer(ctx context.Context, username string) (*domain.Customer, error)
	CreateSession(ctx context.Context, s *domain.CustomerSession) error
	GetSession(ctx context.Context, id string) (*domain.CustomerSession, error)
	DeleteSession(ctx context.Context, id string) error
	CountCustomers(ctx context.Context) (int64, error)
	CountSessions(ctx context.Context) (int64, error)
}

// BookingStore persists bookings scoped under their owning customer.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *domain.Booking) error
	GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error)
	GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, customerID, bookingID string) error
	CountBookings(ctx context.Context) (int64, error)
}

// Backend is one interchangeable storage technology implementing all three
// persistence contracts. The registry selects exactly one per process.
type Backend interface {
	Name() string
	Flights() FlightStore
	Customers() CustomerStore
	Bookings() BookingStore
	Close(ctx context.Context) error
}
