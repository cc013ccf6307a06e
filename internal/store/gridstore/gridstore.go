package gridstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/skyfare/config"
	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/store"
)

// BackendName is the identifier the registry matches against.
const BackendName = "grid"

// casRetries bounds the optimistic retry loop on a contended collection key.
const casRetries = 8

// Store adapts the partitioned key-value grid. A partition holds a whole
// collection of records under one key (for example the set of a customer's
// bookings), so collection writes are read-modify-write. The write is guarded
// by WATCH, which turns the original lost-update window into a conditional
// write that retries on conflict.
type Store struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// NewWithClient is used by tests and callers that manage the client lifecycle.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Name() string                    { return BackendName }
func (s *Store) Flights() store.FlightStore      { return s }
func (s *Store) Customers() store.CustomerStore  { return s }
func (s *Store) Bookings() store.BookingStore    { return s }
func (s *Store) Close(ctx context.Context) error { return s.client.Close() }

// casUpdate applies update to the collection stored at key. The current value
// is nil when the key is absent. On a concurrent write to the same key the
// transaction fails and the whole read-modify-write is retried.
func (s *Store) casUpdate(ctx context.Context, key string, update func(current []byte) ([]byte, error)) error {
	for i := 0; i < casRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			next, err := update(current)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, next, 0)
				return nil
			})
			return err
		}, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("gridstore: key %s contended beyond %d attempts", key, casRetries)
}

func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *Store) GetFlight(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	var flights []domain.Flight
	if err := s.getJSON(ctx, flightKey(flightSegmentID), &flights); err != nil {
		return nil, err
	}
	for i := range flights {
		if flights[i].ID == flightID {
			return &flights[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetFlightSegment(ctx context.Context, origin, dest string) (*domain.FlightSegment, error) {
	var segments []domain.FlightSegment
	if err := s.getJSON(ctx, segmentKey(origin), &segments); err != nil {
		return nil, err
	}
	for i := range segments {
		if segments[i].DestPort == dest {
			return &segments[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetFlightsBySegment(ctx context.Context, segment *domain.FlightSegment, departure *time.Time) ([]domain.Flight, error) {
	var all []domain.Flight
	if err := s.getJSON(ctx, flightKey(segment.Name), &all); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Flight{}, nil
		}
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(all))
	for _, f := range all {
		if departure != nil && !f.SameDepartureDay(*departure) {
			continue
		}
		f.Segment = segment
		flights = append(flights, f)
	}
	return flights, nil
}

func (s *Store) CreateFlight(ctx context.Context, f *domain.Flight) error {
	stored := *f
	stored.Segment = nil
	return s.casUpdate(ctx, flightKey(f.FlightSegmentID), func(current []byte) ([]byte, error) {
		var flights []domain.Flight
		if current != nil {
			if err := json.Unmarshal(current, &flights); err != nil {
				return nil, err
			}
		}
		for i := range flights {
			if flights[i].ID == stored.ID {
				return current, nil
			}
		}
		return json.Marshal(append(flights, stored))
	})
}

func (s *Store) StoreFlightSegment(ctx context.Context, seg *domain.FlightSegment) error {
	return s.casUpdate(ctx, segmentKey(seg.OriginPort), func(current []byte) ([]byte, error) {
		var segments []domain.FlightSegment
		if current != nil {
			if err := json.Unmarshal(current, &segments); err != nil {
				return nil, err
			}
		}
		for i := range segments {
			if segments[i].Name == seg.Name {
				return current, nil
			}
		}
		return json.Marshal(append(segments, *seg))
	})
}

func (s *Store) StoreAirportMapping(ctx context.Context, m *domain.AirportCodeMapping) error {
	return s.setJSON(ctx, airportKey(m.AirportCode), m)
}

func (s *Store) CountFlights(ctx context.Context) (int64, error) {
	return s.sumCollections(ctx, "flight:*")
}

func (s *Store) CountFlightSegments(ctx context.Context) (int64, error) {
	return s.sumCollections(ctx, "segment:*")
}

func (s *Store) CountAirports(ctx context.Context) (int64, error) {
	return s.countKeys(ctx, "airport:*")
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	return s.setJSON(ctx, customerKey(c.Username), c)
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	set, err := s.client.SetXX(ctx, customerKey(c.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, username string) (*domain.Customer, error) {
	var c domain.Customer
	if err := s.getJSON(ctx, customerKey(username), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.CustomerSession) error {
	return s.setJSON(ctx, sessionKey(sess.ID), sess)
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.CustomerSession, error) {
	var sess domain.CustomerSession
	if err := s.getJSON(ctx, sessionKey(id), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	return s.countKeys(ctx, "customer:*")
}

func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	return s.countKeys(ctx, "session:*")
}

func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	return s.casUpdate(ctx, bookingKey(b.CustomerID), func(current []byte) ([]byte, error) {
		var bookings []domain.Booking
		if current != nil {
			if err := json.Unmarshal(current, &bookings); err != nil {
				return nil, err
			}
		}
		for i := range bookings {
			if bookings[i].ID == b.ID {
				return nil, store.ErrDuplicateBooking
			}
		}
		return json.Marshal(append(bookings, *b))
	})
}

func (s *Store) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	var bookings []domain.Booking
	if err := s.getJSON(ctx, bookingKey(customerID), &bookings); err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == bookingID {
			return &bookings[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := s.getJSON(ctx, bookingKey(customerID), &bookings); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Booking{}, nil
		}
		return nil, err
	}
	return bookings, nil
}

func (s *Store) DeleteBooking(ctx context.Context, customerID, bookingID string) error {
	return s.casUpdate(ctx, bookingKey(customerID), func(current []byte) ([]byte, error) {
		var bookings []domain.Booking
		if current != nil {
			if err := json.Unmarshal(current, &bookings); err != nil {
				return nil, err
			}
		}
		kept := make([]domain.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.ID != bookingID {
				kept = append(kept, b)
			}
		}
		return json.Marshal(kept)
	})
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	return s.sumCollections(ctx, "booking:*")
}

// countKeys walks the key index and counts entries one by one. There is no
// maintained counter; the cost is O(n) over the map.
func (s *Store) countKeys(ctx context.Context, match string) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, match, 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

// sumCollections counts records inside collection-valued partitions, fetching
// each collection and adding its length.
func (s *Store) sumCollections(ctx context.Context, match string) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, match, 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return 0, err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, err
		}
		n += int64(len(items))
	}
	return n, iter.Err()
}

var _ store.Backend = (*Store)(nil)
