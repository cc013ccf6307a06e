package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Domenick1991/skyfare/config"
	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/store"
)

// BackendName is the identifier the registry matches against.
const BackendName = "mongo"

const (
	collFlights   = "flights"
	collSegments  = "flightSegments"
	collAirports  = "airportCodeMappings"
	collCustomers = "customers"
	collSessions  = "customerSessions"
	collBookings  = "bookings"
)

// Store adapts the document store. Each entity is one record per document, so
// lookups are field-equality queries and there is no client-side
// merge-on-write: "bookings by customer" is a filter on customerId rather
// than a partition read.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.User != "" && cfg.Password != "" {
		opts.SetAuth(options.Credential{Username: cfg.User, Password: cfg.Password})
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, err
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) Name() string                    { return BackendName }
func (s *Store) Flights() store.FlightStore      { return s }
func (s *Store) Customers() store.CustomerStore  { return s }
func (s *Store) Bookings() store.BookingStore    { return s }
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) findOne(ctx context.Context, coll string, filter bson.M, out any) error {
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) GetFlight(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	var f domain.Flight
	if err := s.findOne(ctx, collFlights, bson.M{"_id": flightID}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) GetFlightSegment(ctx context.Context, origin, dest string) (*domain.FlightSegment, error) {
	var seg domain.FlightSegment
	filter := bson.M{"originPort": origin, "destPort": dest}
	if err := s.findOne(ctx, collSegments, filter, &seg); err != nil {
		return nil, err
	}
	return &seg, nil
}

func (s *Store) GetFlightsBySegment(ctx context.Context, segment *domain.FlightSegment, departure *time.Time) ([]domain.Flight, error) {
	filter := bson.M{"flightSegmentId": segment.Name}
	if departure != nil {
		day := departure.UTC().Truncate(24 * time.Hour)
		filter["scheduledDepartureTime"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}

	cur, err := s.db.Collection(collFlights).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	flights := make([]domain.Flight, 0)
	for cur.Next(ctx) {
		var f domain.Flight
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		f.Segment = segment
		flights = append(flights, f)
	}
	return flights, cur.Err()
}

func (s *Store) CreateFlight(ctx context.Context, f *domain.Flight) error {
	stored := *f
	stored.Segment = nil
	_, err := s.db.Collection(collFlights).InsertOne(ctx, stored)
	return err
}

func (s *Store) StoreFlightSegment(ctx context.Context, seg *domain.FlightSegment) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collSegments).ReplaceOne(ctx, bson.M{"_id": seg.Name}, seg, opts)
	return err
}

func (s *Store) StoreAirportMapping(ctx context.Context, m *domain.AirportCodeMapping) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collAirports).ReplaceOne(ctx, bson.M{"_id": m.AirportCode}, m, opts)
	return err
}

func (s *Store) CountFlights(ctx context.Context) (int64, error) {
	return s.db.Collection(collFlights).CountDocuments(ctx, bson.D{})
}

func (s *Store) CountFlightSegments(ctx context.Context) (int64, error) {
	return s.db.Collection(collSegments).CountDocuments(ctx, bson.D{})
}

func (s *Store) CountAirports(ctx context.Context) (int64, error) {
	return s.db.Collection(collAirports).CountDocuments(ctx, bson.D{})
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collCustomers).ReplaceOne(ctx, bson.M{"_id": c.Username}, c, opts)
	return err
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	res, err := s.db.Collection(collCustomers).ReplaceOne(ctx, bson.M{"_id": c.Username}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, username string) (*domain.Customer, error) {
	var c domain.Customer
	if err := s.findOne(ctx, collCustomers, bson.M{"_id": username}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.CustomerSession) error {
	_, err := s.db.Collection(collSessions).InsertOne(ctx, sess)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.CustomerSession, error) {
	var sess domain.CustomerSession
	if err := s.findOne(ctx, collSessions, bson.M{"_id": id}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.Collection(collSessions).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	return s.db.Collection(collCustomers).CountDocuments(ctx, bson.D{})
}

func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	return s.db.Collection(collSessions).CountDocuments(ctx, bson.D{})
}

func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	_, err := s.db.Collection(collBookings).InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicateBooking
	}
	return err
}

func (s *Store) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	var b domain.Booking
	if err := s.findOne(ctx, collBookings, bson.M{"_id": bookingID, "customerId": customerID}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	cur, err := s.db.Collection(collBookings).Find(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookings := make([]domain.Booking, 0)
	for cur.Next(ctx) {
		var b domain.Booking
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, cur.Err()
}

func (s *Store) DeleteBooking(ctx context.Context, customerID, bookingID string) error {
	_, err := s.db.Collection(collBookings).DeleteOne(ctx, bson.M{"_id": bookingID, "customerId": customerID})
	return err
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	return s.db.Collection(collBookings).CountDocuments(ctx, bson.D{})
}

var _ store.Backend = (*Store)(nil)
