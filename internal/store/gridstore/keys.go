package gridstore

import "fmt"

// Partition-key choice is deliberate and asymmetric per map. The braces are
// redis cluster hash tags, so records sharing a partition key land on the
// same shard and a collection read is a single-partition round trip:
//
//	bookings  partition by customer id    ("all bookings for a customer")
//	flights   partition by segment id     ("all flights on a segment")
//	segments  partition by origin airport ("all segments leaving an airport")
//
// Customers, sessions and airport mappings are one record per key.

func bookingKey(customerID string) string {
	return fmt.Sprintf("booking:{%s}", customerID)
}

func flightKey(flightSegmentID string) string {
	return fmt.Sprintf("flight:{%s}", flightSegmentID)
}

func segmentKey(originPort string) string {
	return fmt.Sprintf("segment:{%s}", originPort)
}

func customerKey(username string) string {
	return fmt.Sprintf("customer:{%s}", username)
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:{%s}", id)
}

func airportKey(code string) string {
	return fmt.Sprintf("airport:{%s}", code)
}
