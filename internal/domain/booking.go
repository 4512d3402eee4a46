package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type Passenger struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// Booking is a reservation. TotalPriceCents is the amount charged at
// booking time and is never recomputed from current offers.
type Booking struct {
	ID              int64
	ConfirmationID  string
	FlightID        int64
	SeatNumber      int
	Token           string
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	Passengers      []Passenger
	TotalPriceCents int64
	ExpiresAt       time.Time
	Email           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingFlight pairs a booking with its flight for callers that need
// schedule data, such as the reminder scheduler.
type BookingFlight struct {
	Booking Booking
	Flight  Flight
}
