package flights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/store"
	"github.com/Domenick1991/skyfare/pkg/metrics"
)

type FlightUseCase interface {
	GetFlightByFlightID(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error)
	GetFlightByAirportsAndDepartureDate(ctx context.Context, fromAirport, toAirport string, departure time.Time) ([]domain.Flight, error)
	GetFlightByAirports(ctx context.Context, fromAirport, toAirport string) ([]domain.Flight, error)
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	StoreFlightSegment(ctx context.Context, name, originPort, destPort string, miles int) error
	StoreAirportMapping(ctx context.Context, airportCode, airportName string) error
	CountFlights(ctx context.Context) (int64, error)
	CountFlightSegments(ctx context.Context) (int64, error)
	CountAirports(ctx context.Context) (int64, error)
}

type CreateFlightInput struct {
	FlightSegmentID    string    `json:"flight_segment_id"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	FirstClassCents    int64     `json:"first_class_cents"`
	EconomyClassCents  int64     `json:"economy_class_cents"`
	NumFirstClassSeats int       `json:"num_first_class_seats"`
	NumEconomySeats    int       `json:"num_economy_seats"`
	AirplaneTypeID     string    `json:"airplane_type_id"`
}

// FlightService owns three process-local caches over the selected backend:
// segment by origin+destination (including sentinel entries for routes that
// do not exist), flight list by segment+day, and flight by id. All three are
// populated with insert-if-absent and never invalidated: flights and segments
// are written once by the bulk loader and immutable afterwards, which is the
// invariant that makes unbounded caching sound.
type FlightService struct {
	store store.FlightStore
	keys  *keygen.Generator
	log   *zap.SugaredLogger
	stats *metrics.Metrics

	segmentCache    sync.Map // origin+dest -> *domain.FlightSegment
	flightListCache sync.Map // segment name + day -> []domain.Flight
	flightCache     sync.Map // flight id -> *domain.Flight
}

func NewFlightService(st store.FlightStore, keys *keygen.Generator, log *zap.SugaredLogger, stats *metrics.Metrics) *FlightService {
	return &FlightService{store: st, keys: keys, log: log, stats: stats}
}

func (s *FlightService) hit(cache string) {
	if s.stats != nil {
		s.stats.CacheHits.WithLabelValues(cache).Inc()
	}
}

func (s *FlightService) miss(cache string) {
	if s.stats != nil {
		s.stats.CacheMisses.WithLabelValues(cache).Inc()
	}
}

// GetFlightByFlightID looks up one flight through the flight-id cache. A race
// between two concurrent misses converges on whichever value was stored
// first; the loser discards its copy.
func (s *FlightService) GetFlightByFlightID(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	if cached, ok := s.flightCache.Load(flightID); ok {
		s.hit("flight")
		return cached.(*domain.Flight), nil
	}
	s.miss("flight")

	flight, err := s.store.GetFlight(ctx, flightID, flightSegmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get flight %s: %w", flightID, err)
	}

	actual, _ := s.flightCache.LoadOrStore(flightID, flight)
	return actual.(*domain.Flight), nil
}

// GetFlightByAirportsAndDepartureDate returns the flights from one airport to
// another on a given day. A route with no underlying segment is cached as the
// sentinel, so the second and every later query answers with an empty list
// without touching the backend.
func (s *FlightService) GetFlightByAirportsAndDepartureDate(ctx context.Context, fromAirport, toAirport string, departure time.Time) ([]domain.Flight, error) {
	s.log.Debugw("flight search", "from", fromAirport, "to", toAirport, "departure", departure)

	segment, err := s.segmentFor(ctx, fromAirport, toAirport)
	if err != nil {
		return nil, err
	}
	if segment.IsSentinel() {
		return []domain.Flight{}, nil
	}

	listKey := segment.Name + departure.UTC().Format(time.DateOnly)
	if cached, ok := s.flightListCache.Load(listKey); ok {
		s.hit("flightlist")
		return cached.([]domain.Flight), nil
	}
	s.miss("flightlist")

	flights, err := s.store.GetFlightsBySegment(ctx, segment, &departure)
	if err != nil {
		return nil, fmt.Errorf("get flights on segment %s: %w", segment.Name, err)
	}

	// An empty day is cached too: the schedule will not grow after load.
	actual, _ := s.flightListCache.LoadOrStore(listKey, flights)
	return actual.([]domain.Flight), nil
}

// GetFlightByAirports is the unconditioned browse query. It is deliberately
// uncached: the result set covers every loaded day on the segment and grows
// with fresh loads.
func (s *FlightService) GetFlightByAirports(ctx context.Context, fromAirport, toAirport string) ([]domain.Flight, error) {
	segment, err := s.store.GetFlightSegment(ctx, fromAirport, toAirport)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Flight{}, nil
		}
		return nil, fmt.Errorf("get segment %s-%s: %w", fromAirport, toAirport, err)
	}
	flights, err := s.store.GetFlightsBySegment(ctx, segment, nil)
	if err != nil {
		return nil, fmt.Errorf("get flights on segment %s: %w", segment.Name, err)
	}
	return flights, nil
}

func (s *FlightService) segmentFor(ctx context.Context, fromAirport, toAirport string) (*domain.FlightSegment, error) {
	key := fromAirport + toAirport
	if cached, ok := s.segmentCache.Load(key); ok {
		s.hit("segment")
		return cached.(*domain.FlightSegment), nil
	}
	s.miss("segment")

	segment, err := s.store.GetFlightSegment(ctx, fromAirport, toAirport)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			segment = domain.SentinelSegment()
		} else {
			return nil, fmt.Errorf("get segment %s-%s: %w", fromAirport, toAirport, err)
		}
	}

	actual, _ := s.segmentCache.LoadOrStore(key, segment)
	return actual.(*domain.FlightSegment), nil
}

func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		ID:                 s.keys.Generate(),
		FlightSegmentID:    input.FlightSegmentID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		FirstClassCents:    input.FirstClassCents,
		EconomyClassCents:  input.EconomyClassCents,
		NumFirstClassSeats: input.NumFirstClassSeats,
		NumEconomySeats:    input.NumEconomySeats,
		AirplaneTypeID:     input.AirplaneTypeID,
	}
	if err := s.store.CreateFlight(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}
	return flight, nil
}

func (s *FlightService) StoreFlightSegment(ctx context.Context, name, originPort, destPort string, miles int) error {
	seg := &domain.FlightSegment{Name: name, OriginPort: originPort, DestPort: destPort, Miles: miles}
	if err := s.store.StoreFlightSegment(ctx, seg); err != nil {
		return fmt.Errorf("store segment %s: %w", name, err)
	}
	return nil
}

func (s *FlightService) StoreAirportMapping(ctx context.Context, airportCode, airportName string) error {
	m := &domain.AirportCodeMapping{AirportCode: airportCode, AirportName: airportName}
	if err := s.store.StoreAirportMapping(ctx, m); err != nil {
		return fmt.Errorf("store airport mapping %s: %w", airportCode, err)
	}
	return nil
}

func (s *FlightService) CountFlights(ctx context.Context) (int64, error) {
	return s.store.CountFlights(ctx)
}

func (s *FlightService) CountFlightSegments(ctx context.Context) (int64, error) {
	return s.store.CountFlightSegments(ctx)
}

func (s *FlightService) CountAirports(ctx context.Context) (int64, error) {
	return s.store.CountAirports(ctx)
}

var _ FlightUseCase = (*FlightService)(nil)
