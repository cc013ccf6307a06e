package domain

import "time"

// Booking is scoped under a customer: the generated ID is unique, but reads
// and deletes always carry the owning customer's id because the grid backend
// stores a customer's bookings together under the customer's partition key.
type Booking struct {
	ID              string    `json:"id" bson:"_id"`
	CustomerID      string    `json:"customer_id" bson:"customerId"`
	FlightID        string    `json:"flight_id" bson:"flightId"`
	FlightSegmentID string    `json:"flight_segment_id" bson:"flightSegmentId"`
	DateOfBooking   time.Time `json:"date_of_booking" bson:"dateOfBooking"`
}
