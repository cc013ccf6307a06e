package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/kafka"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
	"github.com/Domenick1991/skyfare/internal/store"
	"github.com/Domenick1991/skyfare/pkg/metrics"
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, customerID, flightSegmentID, flightID string) (*domain.Booking, error)
	GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error)
	GetBookingsByUser(ctx context.Context, customerID string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, customerID, bookingID string) error
	CountBookings(ctx context.Context) (int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings  store.BookingStore
	flights   flights.FlightUseCase
	customers customers.CustomerUseCase
	keys      *keygen.Generator
	log       *zap.SugaredLogger
	stats     *metrics.Metrics

	producer    Producer
	eventsTopic string
}

type BookingServiceOption func(*BookingService)

// WithProducer enables booking event publication. Without it the service
// runs storage-only.
func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.eventsTopic = topic
	}
}

func NewBookingService(
	bookings store.BookingStore,
	flightSvc flights.FlightUseCase,
	customerSvc customers.CustomerUseCase,
	keys *keygen.Generator,
	log *zap.SugaredLogger,
	stats *metrics.Metrics,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		flights:   flightSvc,
		customers: customerSvc,
		keys:      keys,
		log:       log,
		stats:     stats,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookFlight creates a booking for an existing customer on an existing
// flight. The flight lookup goes through the flight service so it benefits
// from the flight-id cache. A booking whose generated id already exists in
// the customer's collection fails with store.ErrDuplicateBooking.
func (s *BookingService) BookFlight(ctx context.Context, customerID, flightSegmentID, flightID string) (*domain.Booking, error) {
	flight, err := s.flights.GetFlightByFlightID(ctx, flightID, flightSegmentID)
	if err != nil {
		return nil, fmt.Errorf("book flight: %w", err)
	}
	if _, err := s.customers.GetCustomerByUsername(ctx, customerID); err != nil {
		return nil, fmt.Errorf("book flight: %w", err)
	}

	booking := &domain.Booking{
		ID:              s.keys.Generate(),
		CustomerID:      customerID,
		FlightID:        flight.ID,
		FlightSegmentID: flight.FlightSegmentID,
		DateOfBooking:   time.Now(),
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, store.ErrDuplicateBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if s.stats != nil {
		s.stats.BookingsCreated.Inc()
	}
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, customerID, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) GetBookingsByUser(ctx context.Context, customerID string) ([]domain.Booking, error) {
	bookings, err := s.bookings.GetBookingsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get bookings for %s: %w", customerID, err)
	}
	return bookings, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, customerID, bookingID string) error {
	if err := s.bookings.DeleteBooking(ctx, customerID, bookingID); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if s.stats != nil {
		s.stats.BookingsRemoved.Inc()
	}
	s.publish(ctx, kafka.EventBookingCancelled, &domain.Booking{ID: bookingID, CustomerID: customerID})
	return nil
}

func (s *BookingService) CountBookings(ctx context.Context) (int64, error) {
	return s.bookings.CountBookings(ctx)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		FlightID:   booking.FlightID,
		BookedAt:   booking.DateOfBooking,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		s.log.Warnw("publish booking event", "type", eventType, "booking", booking.ID, "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
