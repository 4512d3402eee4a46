package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusArrived   FlightStatus = "ARRIVED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
)

type Flight struct {
	ID              int64
	FlightNumber    string
	AirlineCode     string
	OriginCode      string
	DestinationCode string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	TotalSeats      int
	AvailableSeats  int
	PriceCents      int64
	Status          FlightStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DurationMinutes is derived from the schedule, not stored.
func (f *Flight) DurationMinutes() int {
	return int(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute)
}
