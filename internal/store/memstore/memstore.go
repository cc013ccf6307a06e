package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/store"
)

// BackendName is the identifier the registry matches against. The in-process
// store is the ambient default when nothing selects a backend.
const BackendName = "inmemory"

// Store keeps every entity type in a process-local map. It exists so the
// system runs with zero external services; data does not survive a restart.
type Store struct {
	mu sync.RWMutex

	segments map[string]domain.FlightSegment
	flights  map[string]domain.Flight
	airports map[string]domain.AirportCodeMapping

	customers map[string]domain.Customer
	sessions  map[string]domain.CustomerSession

	// bookings by customer id, then booking id
	bookings map[string]map[string]domain.Booking
}

func New() *Store {
	return &Store{
		segments:  make(map[string]domain.FlightSegment),
		flights:   make(map[string]domain.Flight),
		airports:  make(map[string]domain.AirportCodeMapping),
		customers: make(map[string]domain.Customer),
		sessions:  make(map[string]domain.CustomerSession),
		bookings:  make(map[string]map[string]domain.Booking),
	}
}

func (s *Store) Name() string                    { return BackendName }
func (s *Store) Flights() store.FlightStore      { return s }
func (s *Store) Customers() store.CustomerStore  { return s }
func (s *Store) Bookings() store.BookingStore    { return s }
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) GetFlight(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[flightID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (s *Store) GetFlightSegment(ctx context.Context, origin, dest string) (*domain.FlightSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, seg := range s.segments {
		if seg.OriginPort == origin && seg.DestPort == dest {
			out := seg
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetFlightsBySegment(ctx context.Context, segment *domain.FlightSegment, departure *time.Time) ([]domain.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flights := make([]domain.Flight, 0)
	for _, f := range s.flights {
		if f.FlightSegmentID != segment.Name {
			continue
		}
		if departure != nil && !f.SameDepartureDay(*departure) {
			continue
		}
		f.Segment = segment
		flights = append(flights, f)
	}
	return flights, nil
}

func (s *Store) CreateFlight(ctx context.Context, f *domain.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.ID] = *f
	return nil
}

func (s *Store) StoreFlightSegment(ctx context.Context, seg *domain.FlightSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[seg.Name] = *seg
	return nil
}

func (s *Store) StoreAirportMapping(ctx context.Context, m *domain.AirportCodeMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airports[m.AirportCode] = *m
	return nil
}

func (s *Store) CountFlights(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.flights)), nil
}

func (s *Store) CountFlightSegments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.segments)), nil
}

func (s *Store) CountAirports(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.airports)), nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.Username] = *c
	return nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.Username]; !ok {
		return store.ErrNotFound
	}
	s.customers[c.Username] = *c
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, username string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.CustomerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.CustomerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.customers)), nil
}

func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sessions)), nil
}

func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCustomer, ok := s.bookings[b.CustomerID]
	if !ok {
		byCustomer = make(map[string]domain.Booking)
		s.bookings[b.CustomerID] = byCustomer
	}
	if _, exists := byCustomer[b.ID]; exists {
		return store.ErrDuplicateBooking
	}
	byCustomer[b.ID] = *b
	return nil
}

func (s *Store) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[customerID][bookingID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Store) GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookings := make([]domain.Booking, 0, len(s.bookings[customerID]))
	for _, b := range s.bookings[customerID] {
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (s *Store) DeleteBooking(ctx context.Context, customerID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings[customerID], bookingID)
	return nil
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, byCustomer := range s.bookings {
		n += int64(len(byCustomer))
	}
	return n, nil
}

var _ store.Backend = (*Store)(nil)
