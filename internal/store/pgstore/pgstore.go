package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/store"
)

// BackendName is the identifier the registry matches against.
const BackendName = "postgres"

// Store is the relational adapter. Like the document store it keeps one row
// per record, so "bookings by customer" is an indexed filter and there is no
// client-side merge-on-write.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string                   { return BackendName }
func (s *Store) Flights() store.FlightStore     { return s }
func (s *Store) Customers() store.CustomerStore { return s }
func (s *Store) Bookings() store.BookingStore   { return s }

func (s *Store) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) GetFlight(ctx context.Context, flightID, flightSegmentID string) (*domain.Flight, error) {
	row := s.db.QueryRow(ctx, `SELECT id, flight_segment_id, departure_time, arrival_time, first_class_cents, economy_class_cents, num_first_class_seats, num_economy_seats, airplane_type_id FROM flights WHERE id=$1`, flightID)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightSegmentID, &f.DepartureTime, &f.ArrivalTime, &f.FirstClassCents, &f.EconomyClassCents, &f.NumFirstClassSeats, &f.NumEconomySeats, &f.AirplaneTypeID); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) GetFlightSegment(ctx context.Context, origin, dest string) (*domain.FlightSegment, error) {
	row := s.db.QueryRow(ctx, `SELECT name, origin_port, dest_port, miles FROM flight_segments WHERE origin_port=$1 AND dest_port=$2`, origin, dest)
	var seg domain.FlightSegment
	if err := row.Scan(&seg.Name, &seg.OriginPort, &seg.DestPort, &seg.Miles); err != nil {
		return nil, notFound(err)
	}
	return &seg, nil
}

func (s *Store) GetFlightsBySegment(ctx context.Context, segment *domain.FlightSegment, departure *time.Time) ([]domain.Flight, error) {
	query := `SELECT id, flight_segment_id, departure_time, arrival_time, first_class_cents, economy_class_cents, num_first_class_seats, num_economy_seats, airplane_type_id FROM flights WHERE flight_segment_id=$1`
	args := []any{segment.Name}
	if departure != nil {
		day := departure.UTC().Truncate(24 * time.Hour)
		query += ` AND departure_time >= $2 AND departure_time < $3`
		args = append(args, day, day.Add(24*time.Hour))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightSegmentID, &f.DepartureTime, &f.ArrivalTime, &f.FirstClassCents, &f.EconomyClassCents, &f.NumFirstClassSeats, &f.NumEconomySeats, &f.AirplaneTypeID); err != nil {
			return nil, err
		}
		f.Segment = segment
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (s *Store) CreateFlight(ctx context.Context, f *domain.Flight) error {
	_, err := s.db.Exec(ctx, `INSERT INTO flights (id, flight_segment_id, departure_time, arrival_time, first_class_cents, economy_class_cents, num_first_class_seats, num_economy_seats, airplane_type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.FlightSegmentID, f.DepartureTime, f.ArrivalTime, f.FirstClassCents, f.EconomyClassCents, f.NumFirstClassSeats, f.NumEconomySeats, f.AirplaneTypeID)
	return err
}

func (s *Store) StoreFlightSegment(ctx context.Context, seg *domain.FlightSegment) error {
	_, err := s.db.Exec(ctx, `INSERT INTO flight_segments (name, origin_port, dest_port, miles)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET origin_port=$2, dest_port=$3, miles=$4`,
		seg.Name, seg.OriginPort, seg.DestPort, seg.Miles)
	return err
}

func (s *Store) StoreAirportMapping(ctx context.Context, m *domain.AirportCodeMapping) error {
	_, err := s.db.Exec(ctx, `INSERT INTO airport_mappings (airport_code, airport_name)
		VALUES ($1, $2)
		ON CONFLICT (airport_code) DO UPDATE SET airport_name=$2`,
		m.AirportCode, m.AirportName)
	return err
}

func (s *Store) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountFlights(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM flights`)
}

func (s *Store) CountFlightSegments(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM flight_segments`)
}

func (s *Store) CountAirports(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM airport_mappings`)
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	_, err := s.db.Exec(ctx, `INSERT INTO customers (username, password, status, total_miles, miles_ytd, street_address1, street_address2, city, state_province, country, postal_code, phone_number, phone_number_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.Username, c.Password, c.Status, c.TotalMiles, c.MilesYTD,
		c.Address.StreetAddress1, c.Address.StreetAddress2, c.Address.City, c.Address.StateProvince, c.Address.Country, c.Address.PostalCode,
		c.PhoneNumber, c.PhoneNumberType)
	return err
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	cmd, err := s.db.Exec(ctx, `UPDATE customers SET password=$2, status=$3, total_miles=$4, miles_ytd=$5, street_address1=$6, street_address2=$7, city=$8, state_province=$9, country=$10, postal_code=$11, phone_number=$12, phone_number_type=$13 WHERE username=$1`,
		c.Username, c.Password, c.Status, c.TotalMiles, c.MilesYTD,
		c.Address.StreetAddress1, c.Address.StreetAddress2, c.Address.City, c.Address.StateProvince, c.Address.Country, c.Address.PostalCode,
		c.PhoneNumber, c.PhoneNumberType)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, username string) (*domain.Customer, error) {
	row := s.db.QueryRow(ctx, `SELECT username, password, status, total_miles, miles_ytd, street_address1, street_address2, city, state_province, country, postal_code, phone_number, phone_number_type FROM customers WHERE username=$1`, username)
	var c domain.Customer
	if err := row.Scan(&c.Username, &c.Password, &c.Status, &c.TotalMiles, &c.MilesYTD,
		&c.Address.StreetAddress1, &c.Address.StreetAddress2, &c.Address.City, &c.Address.StateProvince, &c.Address.Country, &c.Address.PostalCode,
		&c.PhoneNumber, &c.PhoneNumberType); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.CustomerSession) error {
	_, err := s.db.Exec(ctx, `INSERT INTO customer_sessions (id, customer_id, last_accessed, expiration)
		VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.CustomerID, sess.LastAccessed, sess.Expiration)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.CustomerSession, error) {
	row := s.db.QueryRow(ctx, `SELECT id, customer_id, last_accessed, expiration FROM customer_sessions WHERE id=$1`, id)
	var sess domain.CustomerSession
	if err := row.Scan(&sess.ID, &sess.CustomerID, &sess.LastAccessed, &sess.Expiration); err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM customer_sessions WHERE id=$1`, id)
	return err
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM customers`)
}

func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM customer_sessions`)
}

func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	cmd, err := s.db.Exec(ctx, `INSERT INTO bookings (id, customer_id, flight_id, flight_segment_id, date_of_booking)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		b.ID, b.CustomerID, b.FlightID, b.FlightSegmentID, b.DateOfBooking)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return store.ErrDuplicateBooking
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, customerID, bookingID string) (*domain.Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT id, customer_id, flight_id, flight_segment_id, date_of_booking FROM bookings WHERE id=$1 AND customer_id=$2`, bookingID, customerID)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.FlightID, &b.FlightSegmentID, &b.DateOfBooking); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *Store) GetBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT id, customer_id, flight_id, flight_segment_id, date_of_booking FROM bookings WHERE customer_id=$1`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.FlightID, &b.FlightSegmentID, &b.DateOfBooking); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *Store) DeleteBooking(ctx context.Context, customerID, bookingID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1 AND customer_id=$2`, bookingID, customerID)
	return err
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM bookings`)
}

var _ store.Backend = (*Store)(nil)
