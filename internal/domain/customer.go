package domain

import "time"

type MemberShipStatus string

const (
	StatusNone     MemberShipStatus = "NONE"
	StatusSilver   MemberShipStatus = "SILVER"
	StatusGold     MemberShipStatus = "GOLD"
	StatusPlatinum MemberShipStatus = "PLATINUM"
	StatusExecPlat MemberShipStatus = "EXEC_PLATINUM"
	StatusGraphite MemberShipStatus = "GRAPHITE"
)

type PhoneType string

const (
	PhoneUnknown  PhoneType = "UNKNOWN"
	PhoneHome     PhoneType = "HOME"
	PhoneBusiness PhoneType = "BUSINESS"
	PhoneMobile   PhoneType = "MOBILE"
)

type CustomerAddress struct {
	StreetAddress1 string `json:"street_address1" bson:"streetAddress1"`
	StreetAddress2 string `json:"street_address2,omitempty" bson:"streetAddress2,omitempty"`
	City           string `json:"city" bson:"city"`
	StateProvince  string `json:"state_province" bson:"stateProvince"`
	Country        string `json:"country" bson:"country"`
	PostalCode     string `json:"postal_code" bson:"postalCode"`
}

// Customer is keyed by username. Created at registration, mutated by profile
// updates, never deleted in normal operation.
type Customer struct {
	Username        string           `json:"username" bson:"_id"`
	Password        string           `json:"password,omitempty" bson:"password"`
	Status          MemberShipStatus `json:"status" bson:"status"`
	TotalMiles      int              `json:"total_miles" bson:"totalMiles"`
	MilesYTD        int              `json:"miles_ytd" bson:"milesYtd"`
	Address         CustomerAddress  `json:"address" bson:"address"`
	PhoneNumber     string           `json:"phone_number" bson:"phoneNumber"`
	PhoneNumberType PhoneType        `json:"phone_number_type" bson:"phoneNumberType"`
}

// CustomerSession is minted at login and valid until Expiration. Expired
// sessions are removed lazily on first access past expiry.
type CustomerSession struct {
	ID           string    `json:"id" bson:"_id"`
	CustomerID   string    `json:"customer_id" bson:"customerId"`
	LastAccessed time.Time `json:"last_accessed" bson:"lastAccessedTime"`
	Expiration   time.Time `json:"expiration" bson:"timeoutTime"`
}

// Expired reports whether the session's validity window has passed.
func (s *CustomerSession) Expired(now time.Time) bool {
	return s.Expiration.Before(now)
}
