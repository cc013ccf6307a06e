package loader

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
)

// Fallback mileage matrix, used when no file is configured or the
// configured file does not exist.
//
//go:embed mileage.csv
var defaultMileage []byte

const (
	flightsPerSegment = 30
	averageSpeedMPH   = 600

	firstClassCents   = 50000
	economyClassCents = 20000
	firstClassSeats   = 10
	economySeats      = 200
	airplaneType      = "B747"
)

// Loader seeds the selected backend with sample data: a flight schedule
// derived from an airport mileage matrix, plus a batch of gold-status
// customers. It goes through the services rather than the stores so the
// data takes the same path client writes do.
type Loader struct {
	flights   flights.FlightUseCase
	customers customers.CustomerUseCase
	log       *zap.SugaredLogger
}

func New(flightSvc flights.FlightUseCase, customerSvc customers.CustomerUseCase, log *zap.SugaredLogger) *Loader {
	return &Loader{
		flights:   flightSvc,
		customers: customerSvc,
		log:       log,
	}
}

// Load populates flights then customers and returns a human-readable summary.
func (l *Loader) Load(ctx context.Context, mileageFile string, numCustomers int) (string, error) {
	start := time.Now()

	l.log.Infow("start loading flights", "mileage_file", mileageFile)
	if err := l.LoadFlights(ctx, mileageFile); err != nil {
		return "", fmt.Errorf("load flights: %w", err)
	}

	l.log.Infow("start loading customers", "count", numCustomers)
	if err := l.LoadCustomers(ctx, numCustomers); err != nil {
		return "", fmt.Errorf("load customers: %w", err)
	}

	elapsed := time.Since(start).Seconds()
	l.log.Infow("finished loading", "seconds", elapsed)
	return fmt.Sprintf("loaded flights and %d customers in %.1f seconds", numCustomers, elapsed), nil
}

// LoadFlights parses the mileage matrix and creates, for every airport pair
// with a known distance, one flight segment and one flight per day for the
// next thirty days, departing at midnight UTC.
//
// The matrix format: the first line lists airport names, the second their
// codes, and every following line holds an airport name, its code, and the
// distance in miles to each airport of the header ("NA" where no route
// exists).
func (l *Loader) LoadFlights(ctx context.Context, path string) error {
	data, err := l.readMileage(path)
	if err != nil {
		return err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse mileage matrix: %w", err)
	}
	if len(records) < 3 {
		return fmt.Errorf("mileage matrix too short: %d lines", len(records))
	}

	names, codes := records[0], records[1]
	if len(names) != len(codes) {
		return fmt.Errorf("mileage matrix header mismatch: %d names, %d codes", len(names), len(codes))
	}

	airports := make([]domain.AirportCodeMapping, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for i := range codes {
		airports = append(airports, domain.AirportCodeMapping{AirportCode: codes[i], AirportName: names[i]})
		seen[codes[i]] = true
	}

	now := time.Now().UTC()
	firstDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	segments := 0
	for _, row := range records[2:] {
		if len(row) < 2 {
			continue
		}
		name, code := row[0], row[1]
		if !seen[code] {
			airports = append(airports, domain.AirportCodeMapping{AirportCode: code, AirportName: name})
			seen[code] = true
		}
		for col, milesField := range row[2:] {
			if col >= len(codes) {
				break
			}
			milesField = strings.TrimSpace(milesField)
			if milesField == "NA" {
				continue
			}
			miles, err := strconv.Atoi(milesField)
			if err != nil {
				return fmt.Errorf("mileage %s to %s: %w", code, codes[col], err)
			}

			segmentID := "AA" + strconv.Itoa(segments)
			if err := l.flights.StoreFlightSegment(ctx, segmentID, code, codes[col], miles); err != nil {
				return fmt.Errorf("store segment %s: %w", segmentID, err)
			}

			for day := 0; day < flightsPerSegment; day++ {
				departure := firstDay.AddDate(0, 0, day)
				_, err := l.flights.CreateFlight(ctx, flights.CreateFlightInput{
					FlightSegmentID:    segmentID,
					DepartureTime:      departure,
					ArrivalTime:        arrivalTime(departure, miles),
					FirstClassCents:    firstClassCents,
					EconomyClassCents:  economyClassCents,
					NumFirstClassSeats: firstClassSeats,
					NumEconomySeats:    economySeats,
					AirplaneTypeID:     airplaneType,
				})
				if err != nil {
					return fmt.Errorf("create flight on %s: %w", segmentID, err)
				}
			}
			segments++
		}
	}

	for _, airport := range airports {
		if err := l.flights.StoreAirportMapping(ctx, airport.AirportCode, airport.AirportName); err != nil {
			return fmt.Errorf("store airport %s: %w", airport.AirportCode, err)
		}
	}

	l.log.Infow("flights loaded", "segments", segments, "airports", len(airports))
	return nil
}

// LoadCustomers creates uid0@email.com through uid{n-1}@email.com, all gold
// members sharing the same address and password.
func (l *Loader) LoadCustomers(ctx context.Context, numCustomers int) error {
	address := domain.CustomerAddress{
		StreetAddress1: "123 Main St.",
		City:           "Anytown",
		StateProvince:  "NC",
		Country:        "USA",
		PostalCode:     "27617",
	}
	for i := 0; i < numCustomers; i++ {
		_, err := l.customers.CreateCustomer(ctx, customers.CreateCustomerInput{
			Username:        fmt.Sprintf("uid%d@email.com", i),
			Password:        "password",
			Status:          domain.StatusGold,
			TotalMiles:      1000000,
			MilesYTD:        1000,
			PhoneNumber:     "919-123-4567",
			PhoneNumberType: domain.PhoneBusiness,
			Address:         address,
		})
		if err != nil {
			return fmt.Errorf("create customer %d: %w", i, err)
		}
	}
	return nil
}

func (l *Loader) readMileage(path string) ([]byte, error) {
	if path == "" {
		return defaultMileage, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		l.log.Infow("mileage file not found, using built-in matrix", "path", path)
		return defaultMileage, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mileage file %s: %w", path, err)
	}
	return data, nil
}

func arrivalTime(departure time.Time, miles int) time.Time {
	hours := float64(miles) / averageSpeedMPH
	return departure.Add(time.Duration(hours * float64(time.Hour)))
}
