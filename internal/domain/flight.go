package domain

import "time"

// FlightSegment is a named origin/destination pair with a fixed distance,
// independent of any scheduled date. Segments are immutable once stored.
type FlightSegment struct {
	Name       string `json:"name" bson:"_id"`
	OriginPort string `json:"origin_port" bson:"originPort"`
	DestPort   string `json:"dest_port" bson:"destPort"`
	Miles      int    `json:"miles" bson:"miles"`
}

// IsSentinel reports whether the segment is the cached negative-lookup marker.
// The sentinel must never be persisted.
func (s *FlightSegment) IsSentinel() bool {
	return s.Name == ""
}

// SentinelSegment marks an (origin, destination) pair with no underlying route
// so repeated lookups skip the backend.
func SentinelSegment() *FlightSegment {
	return &FlightSegment{}
}

// Flight is one scheduled instance of a segment on a specific day. Flights are
// created by the bulk loader and never mutated afterwards.
type Flight struct {
	ID                 string    `json:"id" bson:"_id"`
	FlightSegmentID    string    `json:"flight_segment_id" bson:"flightSegmentId"`
	DepartureTime      time.Time `json:"departure_time" bson:"scheduledDepartureTime"`
	ArrivalTime        time.Time `json:"arrival_time" bson:"scheduledArrivalTime"`
	FirstClassCents    int64     `json:"first_class_cents" bson:"firstClassBaseCost"`
	EconomyClassCents  int64     `json:"economy_class_cents" bson:"economyClassBaseCost"`
	NumFirstClassSeats int       `json:"num_first_class_seats" bson:"numFirstClassSeats"`
	NumEconomySeats    int       `json:"num_economy_seats" bson:"numEconomyClassSeats"`
	AirplaneTypeID     string    `json:"airplane_type_id" bson:"airplaneTypeId"`

	// Segment is populated on reads for callers that need the route; it is
	// not part of the stored record in the grid and document backends.
	Segment *FlightSegment `json:"segment,omitempty" bson:"-"`
}

// SameDepartureDay reports whether the flight departs on the given calendar
// day, ignoring the time of day.
func (f *Flight) SameDepartureDay(d time.Time) bool {
	y1, m1, d1 := f.DepartureTime.UTC().Date()
	y2, m2, d2 := d.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AirportCodeMapping maps an airport code to its human-readable name.
type AirportCodeMapping struct {
	AirportCode string `json:"airport_code" bson:"_id"`
	AirportName string `json:"airport_name" bson:"airportName"`
}
